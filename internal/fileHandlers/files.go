package fileHandlers

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

var mutex sync.Mutex

// HandleAvatarPicture converts the uploaded picture to a square 256x256 webp
// through ffmpeg and stores it under uploads/profiles, named by content hash
// so re-uploads of the same picture don't accumulate files.
func HandleAvatarPicture(r *http.Request) (string, error) {
	picFormFile, _, err := r.FormFile("profile-image")
	if err != nil {
		return "", err
	}
	defer func() {
		err := picFormFile.Close()
		if err != nil {
			fmt.Println(err)
		}
	}()

	inputBytes, err := io.ReadAll(picFormFile)
	if err != nil {
		return "", err
	}

	resultBytes, err := convertToWebp(inputBytes)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(resultBytes)
	fileName := hex.EncodeToString(hash[:]) + ".webp"
	folderPath := filepath.Join(".", "uploads", "profiles")
	fullPath := filepath.Join(folderPath, fileName)

	mutex.Lock()
	defer mutex.Unlock()

	err = os.MkdirAll(folderPath, os.ModePerm)
	if err != nil {
		return "", err
	}

	_, err = os.Stat(fullPath)
	if os.IsNotExist(err) {
		err = os.WriteFile(fullPath, resultBytes, 0644)
		if err != nil {
			return "", err
		}
	} else if err != nil {
		return "", err
	}

	return fileName, nil
}

// SaveChatFile stores an uploaded attachment verbatim under a unique
// directory and returns the relative path clients use as the fileURL.
func SaveChatFile(r *http.Request) (string, error) {
	formFile, header, err := r.FormFile("file")
	if err != nil {
		return "", err
	}
	defer func() {
		err := formFile.Close()
		if err != nil {
			fmt.Println(err)
		}
	}()

	// uuid instead of a bare timestamp so two uploads in the same
	// millisecond can't collide
	token, err := uuid.NewV7()
	if err != nil {
		return "", err
	}

	fileName := filepath.Base(header.Filename)
	if fileName == "." || fileName == string(filepath.Separator) {
		fileName = fmt.Sprintf("%d", time.Now().UnixMilli())
	}

	fileDir := filepath.Join(".", "uploads", "files", token.String())
	fullPath := filepath.Join(fileDir, fileName)

	err = os.MkdirAll(fileDir, os.ModePerm)
	if err != nil {
		return "", err
	}

	outFile, err := os.Create(fullPath)
	if err != nil {
		return "", err
	}

	_, err = io.Copy(outFile, formFile)
	if closeErr := outFile.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", err
	}

	return filepath.ToSlash(filepath.Join("uploads", "files", token.String(), fileName)), nil
}
