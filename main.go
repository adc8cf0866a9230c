package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"

	"chatspace-backend/internal/database"
	"chatspace-backend/internal/handlers"
	"chatspace-backend/internal/hub"
	"chatspace-backend/internal/jwt"
	"chatspace-backend/internal/keyValue"
	"chatspace-backend/internal/models"
	"chatspace-backend/internal/snowflake"
	"chatspace-backend/internal/store"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

func setupLogger() (*zap.SugaredLogger, error) {
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{"app.log", "stdout"}
	config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	logger, err := config.Build()
	if err != nil {
		return nil, err
	}

	sugar := logger.Sugar()
	defer logger.Sync()

	return sugar, nil
}

func readConfigFile() (models.ConfigFile, error) {
	var cfg models.ConfigFile

	configFile, err := os.Open("config.json")
	if err != nil {
		return cfg, err
	}
	defer configFile.Close()

	bytes, err := io.ReadAll(configFile)
	if err != nil {
		return cfg, err
	}

	err = json.Unmarshal(bytes, &cfg)
	if err != nil {
		return cfg, err
	}
	return cfg, nil
}

func setupRedis(cfg *models.ConfigFile) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	err := rdb.Ping(context.Background()).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func main() {
	fmt.Println("Setting up logger...")
	sugar, err := setupLogger()
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println("Looking for ffmpeg...")
	_, err = exec.LookPath("ffmpeg")
	if err != nil {
		sugar.Warn("ffmpeg wasn't found, avatar uploads will fail until it's installed")
	}

	fmt.Println("Reading config file...")
	cfg, err := readConfigFile()
	if err != nil {
		sugar.Fatal(err)
	}

	db, err := database.Setup(&cfg)
	if err != nil {
		sugar.Fatal(err)
	}

	var redisClient *redis.Client
	if !cfg.SelfContained {
		fmt.Println("Connecting to redis...")
		redisClient, err = setupRedis(&cfg)
		if err != nil {
			sugar.Fatal(err)
		}
	}

	keyValue.Setup(sugar, redisClient, cfg.SelfContained)

	err = snowflake.Setup(cfg.SnowflakeWorkerID)
	if err != nil {
		sugar.Fatal(err)
	}

	isHttps := (cfg.TlsCert != "" && cfg.TlsKey != "")

	jwt.Setup(cfg.JwtSecret, isHttps)

	gateways := store.NewSQL(db)
	chatHub := hub.New(sugar, gateways, gateways)

	var httpProtocol string
	if isHttps {
		httpProtocol = "https"
	} else {
		httpProtocol = "http"
	}

	fmt.Printf("Server is running on %s://%s:%s\n", httpProtocol, cfg.Address, cfg.Port)

	err = handlers.Setup(isHttps, &cfg, sugar, db, chatHub)
	if err != nil {
		sugar.Fatal(err)
	}
}
