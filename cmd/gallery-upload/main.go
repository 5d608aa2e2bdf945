package main

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adampresley/adamgokit/slices"
	"github.com/adampresley/configinator"
	"github.com/rikkicasupanan/portfolio/pkg/uploadclient"
)

type Config struct {
	Dir           string `flag:"dir" env:"UPLOAD_DIR" default:"." description:"Directory holding the images to upload"`
	Email         string `flag:"email" env:"ADMIN_EMAIL" default:"" description:"Admin email"`
	Password      string `flag:"password" env:"ADMIN_PASSWORD" default:"" description:"Admin password"`
	PublicationID string `flag:"publication" env:"PUBLICATION_ID" default:"" description:"Publication the photos are added to"`
	SiteURL       string `flag:"site" env:"SITE_URL" default:"http://localhost:8080" description:"Base URL of the running site"`
}

var imageExtensions = []string{".jpg", ".jpeg", ".png"}

func main() {
	var (
		err    error
		client *uploadclient.Client
		files  []string
	)

	config := Config{}
	configinator.Behold(&config)

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if config.Email == "" || config.Password == "" || config.PublicationID == "" {
		slog.Error("email, password and publication are required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if files, err = findImages(config.Dir); err != nil {
		slog.Error("error reading upload directory", "error", err, "dir", config.Dir)
		os.Exit(1)
	}

	if client, err = uploadclient.NewClient(uploadclient.ClientConfig{BaseURL: config.SiteURL}); err != nil {
		slog.Error("error creating upload client", "error", err)
		os.Exit(1)
	}

	if err = client.Login(ctx, config.Email, config.Password); err != nil {
		slog.Error("error logging in", "error", err, "site", config.SiteURL)
		os.Exit(1)
	}

	failed := 0

	for index, file := range files {
		if err = uploadFile(ctx, client, config.PublicationID, file, index); err != nil {
			fmt.Fprintln(os.Stderr)
			slog.Error("error uploading photo", "error", err, "file", file)
			failed++
			continue
		}

		fmt.Println()
	}

	slog.Info("upload finished", "uploaded", len(files)-failed, "failed", failed)

	if failed > 0 {
		os.Exit(1)
	}
}

func uploadFile(ctx context.Context, client *uploadclient.Client, publicationID, path string, displayOrder int) error {
	var (
		err  error
		f    *os.File
		info os.FileInfo
	)

	if f, err = os.Open(path); err != nil {
		return err
	}

	defer f.Close()

	if info, err = f.Stat(); err != nil {
		return err
	}

	name := filepath.Base(path)

	return client.UploadPhoto(ctx, uploadclient.UploadRequest{
		PublicationID: publicationID,
		FileName:      name,
		ContentType:   mime.TypeByExtension(strings.ToLower(filepath.Ext(name))),
		Alt:           strings.TrimSuffix(name, filepath.Ext(name)),
		DisplayOrder:  displayOrder,
		Body:          f,
		Size:          info.Size(),
	}, func(fraction float64) {
		fmt.Printf("\r%s %3.0f%%", name, fraction*100)
	})
}

func findImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)

	if err != nil {
		return nil, err
	}

	result := []string{}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if slices.IsInSlice(strings.ToLower(filepath.Ext(entry.Name())), imageExtensions) {
			result = append(result, filepath.Join(dir, entry.Name()))
		}
	}

	sort.Strings(result)
	return result, nil
}
