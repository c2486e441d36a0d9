package api

import (
	"casefile/internal/config"
	"casefile/internal/database"
	"casefile/internal/storage"
)

type Server struct {
	config  *config.Config
	store   *database.Store
	storage *storage.LocalStorage
}

func NewServer(cfg *config.Config, store *database.Store, storage *storage.LocalStorage) *Server {
	return &Server{
		config:  cfg,
		store:   store,
		storage: storage,
	}
}
