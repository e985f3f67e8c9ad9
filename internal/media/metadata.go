package media

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/evanoberholster/imagemeta"
	"github.com/rs/zerolog/log"
)

// LoadItem stats a library file and fills in the attributes the engine
// reports alongside tags. Metadata extraction failures are logged and
// leave the corresponding fields zero.
func LoadItem(path string, category Category) (*Item, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	item := &Item{
		Path:     path,
		Category: category,
		Size:     info.Size(),
	}

	switch {
	case IsImagePath(path):
		taken, err := captureDate(path)
		if err != nil {
			log.Debug().Err(err).Str("path", path).Msg("No EXIF capture date, continuing without it")
		} else {
			item.TakenAt = taken
		}
	case IsVideoPath(path):
		d, err := videoDuration(path)
		if err != nil {
			log.Debug().Err(err).Str("path", path).Msg("No video duration, continuing without it")
		} else {
			item.Duration = d
		}
	}

	return item, nil
}

// captureDate reads the EXIF date with the fallback chain
// DateTimeOriginal > CreateDate > ModifyDate.
func captureDate(path string) (time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	exifData, err := imagemeta.Decode(f)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to decode EXIF metadata: %w", err)
	}

	if t := exifData.DateTimeOriginal(); !t.IsZero() {
		return t, nil
	}
	if t := exifData.CreateDate(); !t.IsZero() {
		return t, nil
	}
	if t := exifData.ModifyDate(); !t.IsZero() {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("no date fields present")
}

type ffprobeFormat struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// videoDuration asks ffprobe for the container duration. Requires ffprobe on PATH.
func videoDuration(path string) (time.Duration, error) {
	ffprobePath, err := exec.LookPath("ffprobe")
	if err != nil {
		return 0, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}

	out, err := exec.Command(ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	).Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	var parsed ffprobeFormat
	if err := json.Unmarshal(out, &parsed); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	secs, err := strconv.ParseFloat(parsed.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", parsed.Format.Duration, err)
	}
	return time.Duration(secs * float64(time.Second)), nil
}
