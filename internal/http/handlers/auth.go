package handlers

import (
	"database/sql"
	"net/http"
	"strings"
	"sync"
	"time"

	intconfig "muellepos/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	jwtMu     sync.RWMutex
	jwtSecret []byte
)

// SetJWTSecret installs the signing key from configuration at startup.
func SetJWTSecret(secret []byte) {
	jwtMu.Lock()
	defer jwtMu.Unlock()
	jwtSecret = secret
}

func signingKey() []byte {
	jwtMu.RLock()
	defer jwtMu.RUnlock()
	return jwtSecret
}

// AuthUser is the operator payload returned on login.
type AuthUser struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/auth/login
func Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	var (
		user         AuthUser
		passwordHash string
	)
	err := intconfig.DB.QueryRowContext(c.Request.Context(), `
        SELECT id, name, email, password_hash, role
        FROM users
        WHERE email = ?
    `, strings.TrimSpace(req.Email)).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&passwordHash,
		&user.Role,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "email o contraseña incorrectos"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "fallo consultando el usuario: " + err.Error()})
		}
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "email o contraseña incorrectos"})
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": user.Email,
		"role":  user.Role,
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
	})
	tokenString, err := token.SignedString(signingKey())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fallo generando el token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": tokenString,
		"user":  user,
	})
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// POST /api/auth/register
func Register(c *gin.Context) {
	var req registerRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || strings.TrimSpace(req.Password) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email y contraseña son obligatorios"})
		return
	}
	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = "taquilla"
	}

	var exists int
	err := intconfig.DB.QueryRowContext(c.Request.Context(), `
        SELECT COUNT(*)
        FROM users
        WHERE email = ?
    `, req.Email).Scan(&exists)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fallo verificando el usuario: " + err.Error()})
		return
	}
	if exists > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "el email ya está registrado"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fallo cifrando la contraseña"})
		return
	}

	res, err := intconfig.DB.ExecContext(c.Request.Context(), `
        INSERT INTO users (name, email, password_hash, role, created_at)
        VALUES (?, ?, ?, ?, NOW())
    `, strings.TrimSpace(req.Name), req.Email, string(hash), role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fallo guardando el usuario: " + err.Error()})
		return
	}

	id, _ := res.LastInsertId()
	c.JSON(http.StatusCreated, gin.H{
		"message": "registro exitoso",
		"user": AuthUser{
			ID:    id,
			Name:  req.Name,
			Email: req.Email,
			Role:  role,
		},
	})
}
