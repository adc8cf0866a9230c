package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"chatspace-backend/internal/jwt"
	"chatspace-backend/internal/keyValue"
)

type UserIDKeyType struct{}

// UserVerifier authenticates the jwt cookie and passes the user ID down via
// the request context. User existence is checked through the key-value cache
// so a hot path doesn't hit the database on every request.
func UserVerifier(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jwtCookie, err := r.Cookie("jwt")
		if err != nil {
			sugar.Debug(err)
			switch {
			case errors.Is(err, http.ErrNoCookie):
				http.Error(w, "You are not authenticated", http.StatusUnauthorized)
			default:
				http.Error(w, "Couldn't read jwt cookie", http.StatusInternalServerError)
			}
			return
		}

		userToken, err := jwt.VerifyToken(jwtCookie.Value)
		if err != nil {
			sugar.Debug(err)
			http.Error(w, "Token is not valid!", http.StatusForbidden)
			return
		}

		if time.Now().UTC().After(userToken.ExpiresAt.UTC()) {
			http.Error(w, "Login expired", http.StatusUnauthorized)
			return
		}

		key := fmt.Sprintf("user_exists:%d", userToken.UserID)

		userFound := false

		value, err := keyValue.Get(key)
		if err != nil {
			sugar.Error(err)
			http.Error(w, "", http.StatusInternalServerError)
			return
		}

		if value == "" { // user isn't cached
			dbErr := db.QueryRow("SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)", userToken.UserID).Scan(&userFound)
			if dbErr != nil {
				sugar.Error(dbErr)
				http.Error(w, "", http.StatusInternalServerError)
				return
			}
			if userFound {
				err = keyValue.Set(key, "y", 15*time.Minute)
				if err != nil {
					sugar.Error(err)
					http.Error(w, "", http.StatusInternalServerError)
					return
				}
			}
		} else {
			userFound = true
		}

		// a valid token for a deleted user also clears the stale cookie
		if !userFound {
			deleteCookie := jwt.DeleteCookie()
			http.SetCookie(w, &deleteCookie)
			http.Error(w, "", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKeyType{}, userToken.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
