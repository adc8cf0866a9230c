package fileHandlers

import (
	"bytes"
	"os/exec"
)

// convertToWebp pipes the picture through ffmpeg: center-crop to a square,
// scale to 256x256, encode as webp.
func convertToWebp(inputBytes []byte) ([]byte, error) {
	cmd := exec.Command(
		"ffmpeg",
		"-i", "pipe:0",
		"-vf", "crop=min(iw\\,ih):min(iw\\,ih):(iw-min(iw\\,ih))/2:(ih-min(iw\\,ih))/2,scale=256:256",
		"-vframes", "1",
		"-c:v", "libwebp",
		"-quality", "50",
		"-preset", "default",
		"-f", "webp",
		"pipe:1",
	)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	err = cmd.Start()
	if err != nil {
		return nil, err
	}

	_, err = stdin.Write(inputBytes)
	if err != nil {
		return nil, err
	}

	err = stdin.Close()
	if err != nil {
		return nil, err
	}

	err = cmd.Wait()
	if err != nil {
		return nil, err
	}

	return stdout.Bytes(), nil
}
