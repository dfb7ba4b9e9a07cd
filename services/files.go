package services

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"tubegrab/types"

	"github.com/dhowden/tag"
)

var mediaExtensions = map[string]bool{
	".mp4":  true,
	".webm": true,
	".mkv":  true,
	".m4a":  true,
	".mp3":  true,
	".opus": true,
	".ogg":  true,
}

var audioExtensions = map[string]bool{
	".m4a": true,
	".mp3": true,
	".ogg": true,
}

// FileService lists what previous downloads left in the download directory.
type FileService interface {
	ScanMediaFiles(rootPath string) ([]types.MediaFile, error)
}

type fileService struct{}

// NewFileService creates a new file service
func NewFileService() FileService {
	return &fileService{}
}

// ScanMediaFiles walks the download directory and returns every media file
// found. Audio-only files additionally get their embedded tags.
func (fs *fileService) ScanMediaFiles(rootPath string) ([]types.MediaFile, error) {
	files := []types.MediaFile{}

	err := filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Printf("Error accessing path %s: %v", path, err)
			return nil // Continue walking, don't fail entire scan
		}

		ext := strings.ToLower(filepath.Ext(path))
		if info.IsDir() || !mediaExtensions[ext] {
			return nil
		}

		file := types.MediaFile{
			Filename:   info.Name(),
			Size:       info.Size(),
			Ext:        strings.TrimPrefix(ext, "."),
			ModifiedAt: info.ModTime(),
		}
		if audioExtensions[ext] {
			file.Audio = readAudioTags(path)
		}

		files = append(files, file)
		return nil
	})

	if err != nil {
		if os.IsNotExist(err) {
			return []types.MediaFile{}, nil
		}
		return nil, err
	}

	return files, nil
}

// readAudioTags extracts embedded metadata from an audio file, returning nil
// when the file carries none we can parse.
func readAudioTags(path string) *types.AudioTags {
	f, err := os.Open(path)
	if err != nil {
		log.Printf("Warning: could not open audio file %s: %v", path, err)
		return nil
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return nil
	}

	tags := &types.AudioTags{
		Title:  meta.Title(),
		Artist: meta.Artist(),
		Album:  meta.Album(),
	}
	if tags.Title == "" && tags.Artist == "" && tags.Album == "" {
		return nil
	}
	return tags
}
