package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/sprigapp/sprig/internal/auth"
	"github.com/sprigapp/sprig/internal/media"
	"github.com/sprigapp/sprig/internal/people"
	"github.com/sprigapp/sprig/internal/weather"
)

func printWeather(ctx context.Context, apiKey, city string) error {
	wc := weather.NewClient(apiKey)

	var (
		cur  weather.Current
		days []weather.ForecastDay
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := wc.Current(gctx, city)
		if err != nil {
			return err
		}
		cur = c
		return nil
	})
	g.Go(func() error {
		d, err := wc.Forecast(gctx, city)
		if err != nil {
			return err
		}
		days = d
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Printf("%s: %.1f°C (feels %.1f°C), %s, humidity %d%%, wind %.1f m/s\n",
		cur.City, cur.Temp, cur.FeelsLike, cur.Condition, cur.Humidity, cur.Wind)
	for _, d := range days {
		fmt.Printf("  %s  %5.1f°C  %s\n", d.Date, d.Temp, d.Condition)
	}
	return nil
}

func uploadPhoto(ctx context.Context, api *auth.Client, userID, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	img, err := media.Decode(f)
	if err != nil {
		return err
	}
	jpg, err := media.CompressToLimit(img, media.DefaultMaxBytes)
	if err != nil {
		return err
	}

	name := filepath.Base(path)
	stored, err := api.UploadPhoto(ctx, userID, name, jpg)
	if err != nil {
		return err
	}
	fmt.Println("Photo uploaded:", stored)
	return nil
}

func (a *app) cmdPeople(ctx context.Context, args []string) error {
	pc := people.NewClient(a.api, a.plants)

	if len(args) == 1 {
		d, err := pc.Detail(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s <%s>\n", d.Person.Name, d.Person.Email)
		for _, p := range d.Plants {
			fmt.Printf("  %-26s  %s\n", p.Name, p.ID)
		}
		return nil
	}
	if len(args) != 0 {
		return errUsage
	}

	list, err := pc.List(ctx)
	if err != nil {
		return err
	}
	for _, p := range list {
		fmt.Printf("%-24s  %-28s  %s\n", p.Name, p.Email, p.ID)
	}
	return nil
}
