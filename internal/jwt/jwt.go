package jwt

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// token lifetime matches the session length the client expects
const tokenLifeTime = 3 * 24 * time.Hour

type UserToken struct {
	UserID int64  `json:"userID"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

var jwtSecret []byte
var isHttps bool

func Setup(_key string, _isHttps bool) {
	jwtSecret = []byte(_key)
	isHttps = _isHttps
}

func CreateToken(userId int64, email string) (http.Cookie, error) {
	currentTime := time.Now().UTC()
	expirationDate := currentTime.Add(tokenLifeTime)

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, UserToken{
		UserID: userId,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(expirationDate),
		},
	})

	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		return http.Cookie{}, err
	}

	cookie := http.Cookie{
		Name:     "jwt",
		Value:    tokenString,
		Path:     "/",
		Expires:  expirationDate,
		HttpOnly: true,
		Secure:   isHttps,
		SameSite: http.SameSiteLaxMode,
	}

	return cookie, nil
}

// DeleteCookie returns an expired jwt cookie that makes the browser drop the
// session, used by logout and when a token references a deleted user.
func DeleteCookie() http.Cookie {
	return http.Cookie{
		Name:     "jwt",
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
	}
}

func VerifyToken(tokenString string) (UserToken, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserToken{}, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	})
	if err != nil {
		return UserToken{}, err
	} else if claims, ok := token.Claims.(*UserToken); ok {
		return *claims, nil
	} else {
		return UserToken{}, errors.New("invalid token")
	}
}
