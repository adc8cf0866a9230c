package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"chatspace-backend/internal/hub"
	"chatspace-backend/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var sugar *zap.SugaredLogger
var db *sql.DB
var chatHub *hub.Hub
var validate = validator.New()

func Setup(isHttps bool, cfg *models.ConfigFile, _sugar *zap.SugaredLogger, _db *sql.DB, _chatHub *hub.Hub) error {
	sugar = _sugar
	db = _db
	chatHub = _chatHub

	r := chi.NewRouter()

	if cfg.PrintHttpRequests {
		r.Use(middleware.Logger)
	}

	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(r chi.Router) {
			r.Post("/signup", Signup)
			r.Post("/login", Login)
			r.Post("/logout", Logout)
			r.With(UserVerifier).Get("/user-info", GetUserInfo)
			r.With(UserVerifier).Post("/update-profile", UpdateProfile)
			r.With(UserVerifier).Post("/add-profile-image", AddProfileImage)
			r.With(UserVerifier).Delete("/remove-profile-image", RemoveProfileImage)
		})

		api.Route("/contacts", func(r chi.Router) {
			r.Use(UserVerifier)
			r.Post("/search", SearchContacts)
			r.Get("/get-contacts-for-dm", GetContactsForDM)
			r.Get("/get-all-contacts", GetAllContacts)
		})

		api.Route("/messages", func(r chi.Router) {
			r.Use(UserVerifier)
			r.Post("/get-messages", GetMessages)
			r.Post("/upload-file", UploadFile)
		})

		api.Route("/channel", func(r chi.Router) {
			r.Use(UserVerifier)
			r.Post("/create-channel", CreateChannel)
			r.Get("/get-user-channels", GetUserChannels)
			r.Get("/get-channel-messages/{channelId}", GetChannelMessages)
		})
	})

	var websocketPath string

	if cfg.BehindNginx {
		websocketPath = "/ws/"
	} else {
		websocketPath = "/ws"
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir("./uploads"))))
	}

	r.With(UserVerifier).Get(websocketPath, HandleWebSocket)

	address := fmt.Sprintf("%s:%s", cfg.Address, cfg.Port)

	if isHttps {
		return http.ListenAndServeTLS(address, cfg.TlsCert, cfg.TlsKey, r)
	}
	return http.ListenAndServe(address, r)
}
