// Package stub is an in-memory stand-in for the marketplace backend,
// good enough to run the client against without any infrastructure.
// It mirrors the production API's envelope, auth, and error quirks,
// including the leaked Mongo duplicate-key text on favorite conflicts.
package stub

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Options struct {
	JWTSecret []byte
	Logger    *slog.Logger
}

type plantRecord struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Image       string   `json:"image"`
	ForSale     bool     `json:"forSale"`
	StockCount  int      `json:"stockCount"`
	Watering    bool     `json:"watering"`
	Sunlight    bool     `json:"sunlight"`
	Nutrients   bool     `json:"nutrients"`
	Humidity    string   `json:"humidity"`
	Height      string   `json:"height"`
	Temperature string   `json:"temperature"`
	CategoryIDs []string `json:"categoryIds"`
	CreatedBy   string   `json:"createdBy"`
}

type userRecord struct {
	ID           string `json:"_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Photo        string `json:"photo"`
	passwordHash []byte
}

type categoryRecord struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type Server struct {
	mu         sync.Mutex
	plants     map[string]*plantRecord
	plantOrder []string
	users      map[string]*userRecord
	emails     map[string]string
	favorites  map[string]map[string]bool
	categories []categoryRecord

	secret []byte
	log    *slog.Logger
}

func New(opts Options) *Server {
	secret := opts.JWTSecret
	if len(secret) == 0 {
		secret = []byte("dev-only-secret")
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		plants:    make(map[string]*plantRecord),
		users:     make(map[string]*userRecord),
		emails:    make(map[string]string),
		favorites: make(map[string]map[string]bool),
		secret:    secret,
		log:       log,
	}
}

// Seed loads a handful of sample plants and categories.
func (s *Server) Seed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	tropical := categoryRecord{ID: uuid.NewString(), Name: "Tropical"}
	succulent := categoryRecord{ID: uuid.NewString(), Name: "Succulents"}
	s.categories = []categoryRecord{tropical, succulent}

	samples := []*plantRecord{
		{ID: uuid.NewString(), Name: "Monstera Deliciosa", Description: "Split-leaf classic.",
			Price: 24.5, ForSale: true, StockCount: 8, Watering: true, Sunlight: true,
			Humidity: "60%", Temperature: "18-27C", CategoryIDs: []string{tropical.ID}},
		{ID: uuid.NewString(), Name: "Aloe Vera", Description: "Low-maintenance succulent.",
			Price: 9.0, ForSale: true, StockCount: 20, Sunlight: true,
			CategoryIDs: []string{succulent.ID}},
		{ID: uuid.NewString(), Name: "Boston Fern", Description: "Loves shade and mist.",
			Price: 12.0, ForSale: true, StockCount: 3, Watering: true, Nutrients: true,
			CategoryIDs: []string{tropical.ID}},
	}
	for _, p := range samples {
		s.plants[p.ID] = p
		s.plantOrder = append(s.plantOrder, p.ID)
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
	}))

	r.POST("/api/auth/register", s.register)
	r.POST("/api/auth/login", s.login)

	r.GET("/api/plants", s.listPlants)
	r.GET("/api/plants/:id", s.getPlant)
	// gin cannot mix a static "user" segment with the :id wildcard
	// above, so /api/plants/user/:id is dispatched one level down.
	r.GET("/api/plants/:id/:sub", s.getPlantSub)
	r.GET("/api/categories", s.listCategories)
	r.GET("/api/users", s.listUsers)
	r.GET("/api/users/:id", s.getUser)
	r.GET("/api/favorites/user/:id", s.listFavorites)

	r.POST("/api/plants/:id/buy", s.optionalAuth, s.buyPlant)

	authed := r.Group("/api", s.requireAuth)
	{
		authed.POST("/plants", s.createPlant)
		authed.PUT("/plants/:id", s.updatePlant)
		authed.DELETE("/plants/:id", s.deletePlant)
		authed.PUT("/plants/:id/sale", s.setSale)
		authed.PUT("/plants/:id/stock", s.setStock)
		authed.POST("/favorites", s.addFavorite)
		authed.DELETE("/favorites", s.removeFavorite)
		authed.POST("/users/:id/upload", s.uploadPhoto)
	}

	return r
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "message": msg})
}

// ----- auth -----

type jwtClaims struct {
	UserID string `json:"userId"`
	jwt.StandardClaims
}

func (s *Server) issueToken(userID string) (string, error) {
	claims := jwtClaims{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(24 * time.Hour).Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) parseToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if len(header) < 8 || header[:7] != "Bearer " {
		return "", false
	}
	token, err := jwt.ParseWithClaims(header[7:], &jwtClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", false
	}
	claims, ok := token.Claims.(*jwtClaims)
	if !ok {
		return "", false
	}
	return claims.UserID, true
}

func (s *Server) requireAuth(c *gin.Context) {
	userID, ok := s.parseToken(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "missing or invalid token")
		c.Abort()
		return
	}
	c.Set("userId", userID)
	c.Next()
}

// optionalAuth records the caller when a valid token is present but
// lets anonymous requests through; buying does not require an account.
func (s *Server) optionalAuth(c *gin.Context) {
	if userID, ok := s.parseToken(c); ok {
		c.Set("userId", userID)
	}
	c.Next()
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid input")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		fail(c, http.StatusInternalServerError, "could not hash password")
		return
	}

	s.mu.Lock()
	if _, exists := s.emails[req.Email]; exists {
		s.mu.Unlock()
		fail(c, http.StatusConflict, "email already registered")
		return
	}
	u := &userRecord{ID: uuid.NewString(), Name: req.Name, Email: req.Email, passwordHash: hash}
	s.users[u.ID] = u
	s.emails[u.Email] = u.ID
	s.mu.Unlock()

	token, err := s.issueToken(u.ID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "could not issue token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "user": u})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid input")
		return
	}

	s.mu.Lock()
	id, ok := s.emails[req.Email]
	var u *userRecord
	if ok {
		u = s.users[id]
	}
	s.mu.Unlock()

	if u == nil {
		fail(c, http.StatusUnauthorized, "user not found")
		return
	}
	if bcrypt.CompareHashAndPassword(u.passwordHash, []byte(req.Password)) != nil {
		fail(c, http.StatusUnauthorized, "wrong password")
		return
	}

	token, err := s.issueToken(u.ID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "could not issue token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "user": u})
}

// ----- plants -----

func (s *Server) listPlants(c *gin.Context) {
	forSaleOnly := c.Query("forSale") == "true"

	s.mu.Lock()
	out := make([]*plantRecord, 0, len(s.plantOrder))
	for _, id := range s.plantOrder {
		p := s.plants[id]
		if forSaleOnly && !p.ForSale {
			continue
		}
		out = append(out, p)
	}
	s.mu.Unlock()

	ok(c, out)
}

func (s *Server) getPlant(c *gin.Context) {
	s.mu.Lock()
	p, found := s.plants[c.Param("id")]
	s.mu.Unlock()

	if !found {
		fail(c, http.StatusNotFound, "plant not found")
		return
	}
	ok(c, p)
}

func (s *Server) getPlantSub(c *gin.Context) {
	if c.Param("id") != "user" {
		fail(c, http.StatusNotFound, "not found")
		return
	}
	s.listPlantsByUser(c, c.Param("sub"))
}

func (s *Server) listPlantsByUser(c *gin.Context, userID string) {
	s.mu.Lock()
	out := make([]*plantRecord, 0)
	for _, id := range s.plantOrder {
		if p := s.plants[id]; p.CreatedBy == userID {
			out = append(out, p)
		}
	}
	s.mu.Unlock()

	ok(c, out)
}

func (s *Server) listCategories(c *gin.Context) {
	s.mu.Lock()
	cats := append([]categoryRecord(nil), s.categories...)
	s.mu.Unlock()
	ok(c, cats)
}

func (s *Server) createPlant(c *gin.Context) {
	var p plantRecord
	if err := c.ShouldBindJSON(&p); err != nil {
		fail(c, http.StatusBadRequest, "invalid input")
		return
	}
	p.ID = uuid.NewString()
	p.CreatedBy = c.GetString("userId")

	s.mu.Lock()
	s.plants[p.ID] = &p
	s.plantOrder = append(s.plantOrder, p.ID)
	s.mu.Unlock()

	ok(c, &p)
}

func (s *Server) updatePlant(c *gin.Context) {
	var in plantRecord
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "invalid input")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, found := s.plants[c.Param("id")]
	if !found {
		fail(c, http.StatusNotFound, "plant not found")
		return
	}
	in.ID = p.ID
	in.CreatedBy = p.CreatedBy
	if in.StockCount == 0 {
		in.StockCount = p.StockCount
	}
	*p = in
	ok(c, p)
}

func (s *Server) deletePlant(c *gin.Context) {
	id := c.Param("id")

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, found := s.plants[id]; !found {
		fail(c, http.StatusNotFound, "plant not found")
		return
	}
	delete(s.plants, id)
	for i, pid := range s.plantOrder {
		if pid == id {
			s.plantOrder = append(s.plantOrder[:i], s.plantOrder[i+1:]...)
			break
		}
	}
	ok(c, gin.H{"deleted": id})
}

type saleRequest struct {
	Price   float64 `json:"price"`
	ForSale bool    `json:"forSale"`
}

func (s *Server) setSale(c *gin.Context) {
	var req saleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid input")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, found := s.plants[c.Param("id")]
	if !found {
		fail(c, http.StatusNotFound, "plant not found")
		return
	}
	p.Price = req.Price
	p.ForSale = req.ForSale
	ok(c, p)
}

type stockRequest struct {
	StockCount int `json:"stockCount"`
}

func (s *Server) setStock(c *gin.Context) {
	var req stockRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.StockCount < 0 {
		fail(c, http.StatusBadRequest, "invalid input")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, found := s.plants[c.Param("id")]
	if !found {
		fail(c, http.StatusNotFound, "plant not found")
		return
	}
	p.StockCount = req.StockCount
	ok(c, p)
}

type buyRequest struct {
	Qty int `json:"qty"`
}

func (s *Server) buyPlant(c *gin.Context) {
	var req buyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Qty < 1 {
		fail(c, http.StatusBadRequest, "invalid quantity")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, found := s.plants[c.Param("id")]
	if !found {
		fail(c, http.StatusNotFound, "plant not found")
		return
	}
	if !p.ForSale {
		fail(c, http.StatusBadRequest, "plant is not for sale")
		return
	}
	if p.StockCount < req.Qty {
		fail(c, http.StatusConflict, "insufficient stock")
		return
	}

	p.StockCount -= req.Qty
	s.log.Info("stub purchase",
		slog.String("plant", p.ID),
		slog.Int("qty", req.Qty),
		slog.Int("left", p.StockCount))
	ok(c, gin.H{"stockCount": p.StockCount})
}

// ----- favorites -----

type favoriteRequest struct {
	UserID  string `json:"userId" binding:"required"`
	PlantID string `json:"plantId" binding:"required"`
}

func (s *Server) addFavorite(c *gin.Context) {
	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid input")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, found := s.plants[req.PlantID]; !found {
		fail(c, http.StatusNotFound, "plant not found")
		return
	}
	set := s.favorites[req.UserID]
	if set == nil {
		set = make(map[string]bool)
		s.favorites[req.UserID] = set
	}
	if set[req.PlantID] {
		// Production leaks the raw Mongo error here; clients depend
		// on spotting it, so the stub reproduces the text.
		c.String(http.StatusConflict,
			"E11000 duplicate key error collection: sprig.favorites index: userId_1_plantId_1")
		return
	}
	set[req.PlantID] = true
	ok(c, gin.H{"userId": req.UserID, "plantId": req.PlantID})
}

func (s *Server) removeFavorite(c *gin.Context) {
	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid input")
		return
	}

	s.mu.Lock()
	delete(s.favorites[req.UserID], req.PlantID)
	s.mu.Unlock()

	ok(c, gin.H{"userId": req.UserID, "plantId": req.PlantID})
}

func (s *Server) listFavorites(c *gin.Context) {
	userID := c.Param("id")

	s.mu.Lock()
	out := make([]*plantRecord, 0)
	for _, id := range s.plantOrder {
		if s.favorites[userID][id] {
			out = append(out, s.plants[id])
		}
	}
	s.mu.Unlock()

	ok(c, out)
}

// ----- users -----

func (s *Server) listUsers(c *gin.Context) {
	s.mu.Lock()
	out := make([]*userRecord, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	s.mu.Unlock()

	ok(c, out)
}

func (s *Server) uploadPhoto(c *gin.Context) {
	file, err := c.FormFile("photo")
	if err != nil {
		fail(c, http.StatusBadRequest, "photo file missing")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, found := s.users[c.Param("id")]
	if !found {
		fail(c, http.StatusNotFound, "user not found")
		return
	}
	// The stub has no disk; it only records a stored name so clients
	// can render the reference it hands back.
	u.Photo = uuid.NewString() + filepath.Ext(file.Filename)
	ok(c, gin.H{"photo": u.Photo})
}

func (s *Server) getUser(c *gin.Context) {
	s.mu.Lock()
	u, found := s.users[c.Param("id")]
	s.mu.Unlock()

	if !found {
		fail(c, http.StatusNotFound, "user not found")
		return
	}
	ok(c, u)
}
