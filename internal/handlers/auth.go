package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"chatspace-backend/internal/fileHandlers"
	"chatspace-backend/internal/jwt"
	"chatspace-backend/internal/models"
	"chatspace-backend/internal/snowflake"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

func Signup(w http.ResponseWriter, r *http.Request) {
	type Registration struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
	}

	var registration Registration
	err := json.NewDecoder(r.Body).Decode(&registration)
	if err != nil {
		sugar.Debug(err)
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	err = validate.Struct(registration)
	if err != nil {
		var validateErrs validator.ValidationErrors
		if errors.As(err, &validateErrs) {
			signupErrors := make(map[string]string)
			for _, e := range validateErrs {
				signupErrors[e.Field()] = e.Tag()
			}

			w.WriteHeader(http.StatusBadRequest)
			encodeErr := json.NewEncoder(w).Encode(signupErrors)
			if encodeErr != nil {
				sugar.Error(encodeErr)
				http.Error(w, "", http.StatusInternalServerError)
			}
			return
		}

		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	userID, err := snowflake.Generate()
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	passwordBytes, err := bcrypt.GenerateFromPassword([]byte(registration.Password), 12)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	_, err = db.Exec("INSERT INTO users (id, email, password) VALUES(?, ?, ?)", userID, registration.Email, passwordBytes)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	cookie, err := jwt.CreateToken(userID, registration.Email)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &cookie)

	w.WriteHeader(http.StatusCreated)
	err = json.NewEncoder(w).Encode(map[string]models.User{
		"user": {
			ID:    userID,
			Email: registration.Email,
		},
	})
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
}

func Login(w http.ResponseWriter, r *http.Request) {
	type Credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var credentials Credentials
	err := json.NewDecoder(r.Body).Decode(&credentials)
	if err != nil {
		sugar.Debug(err)
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	if credentials.Email == "" || credentials.Password == "" {
		http.Error(w, "Email and Password are required", http.StatusBadRequest)
		return
	}

	var user models.User
	var image sql.NullString
	err = db.QueryRow("SELECT id, password, first_name, last_name, image, color, profile_setup FROM users WHERE email = ?", credentials.Email).
		Scan(&user.ID, &user.Password, &user.FirstName, &user.LastName, &image, &user.Color, &user.ProfileSetup)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "User with the given email not found!", http.StatusNotFound)
		} else {
			sugar.Error(err)
			http.Error(w, "", http.StatusInternalServerError)
		}
		return
	}

	err = bcrypt.CompareHashAndPassword(user.Password, []byte(credentials.Password))
	if err != nil {
		sugar.Debug(err)
		http.Error(w, "Password is incorrect!", http.StatusBadRequest)
		return
	}

	cookie, err := jwt.CreateToken(user.ID, credentials.Email)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &cookie)

	user.Email = credentials.Email
	user.Image = image.String

	err = json.NewEncoder(w).Encode(map[string]models.User{"user": user})
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
}

func Logout(w http.ResponseWriter, r *http.Request) {
	deleteCookie := jwt.DeleteCookie()
	http.SetCookie(w, &deleteCookie)
}

func GetUserInfo(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(UserIDKeyType{}).(int64)

	var user models.User
	var image sql.NullString
	err := db.QueryRow("SELECT email, first_name, last_name, image, color, profile_setup FROM users WHERE id = ?", userID).
		Scan(&user.Email, &user.FirstName, &user.LastName, &image, &user.Color, &user.ProfileSetup)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "User with the given id not found!", http.StatusNotFound)
		} else {
			sugar.Error(err)
			http.Error(w, "", http.StatusInternalServerError)
		}
		return
	}

	user.ID = userID
	user.Image = image.String

	err = json.NewEncoder(w).Encode(user)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
}

func UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(UserIDKeyType{}).(int64)

	type ProfileUpdate struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Color     int    `json:"color"`
	}

	var update ProfileUpdate
	err := json.NewDecoder(r.Body).Decode(&update)
	if err != nil {
		sugar.Debug(err)
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	if update.FirstName == "" || update.LastName == "" {
		http.Error(w, "Firstname and LastName are required!", http.StatusBadRequest)
		return
	}

	_, err = db.Exec("UPDATE users SET first_name = ?, last_name = ?, color = ?, profile_setup = TRUE WHERE id = ?",
		update.FirstName, update.LastName, update.Color, userID)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	GetUserInfo(w, r)
}

func AddProfileImage(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(UserIDKeyType{}).(int64)

	fileName, err := fileHandlers.HandleAvatarPicture(r)
	if err != nil {
		sugar.Debug(err)
		http.Error(w, "File is required!", http.StatusBadRequest)
		return
	}

	imagePath := "uploads/profiles/" + fileName

	_, err = db.Exec("UPDATE users SET image = ? WHERE id = ?", imagePath, userID)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	err = json.NewEncoder(w).Encode(map[string]string{"image": imagePath})
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
}

func RemoveProfileImage(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(UserIDKeyType{}).(int64)

	var image sql.NullString
	err := db.QueryRow("SELECT image FROM users WHERE id = ?", userID).Scan(&image)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	if image.Valid && image.String != "" {
		err = os.Remove(filepath.Clean(image.String))
		if err != nil && !os.IsNotExist(err) {
			sugar.Warnf("Couldn't remove avatar file [%s]: %s", image.String, err)
		}
	}

	_, err = db.Exec("UPDATE users SET image = NULL WHERE id = ?", userID)
	if err != nil {
		sugar.Error(err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
}
