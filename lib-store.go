package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"
)

// LoadOutcome records what happened to one file of a corpus walk. A nil Err
// means the file was decoded and used.
type LoadOutcome struct {
	Path string
	Err  error
}

func (o LoadOutcome) Skipped() bool {
	return o.Err != nil
}

// LoadedImage is a decoded image and the file it came from.
type LoadedImage struct {
	Path  string
	Image Field
}

// LoadImages walks root recursively and decodes every regular file with
// gocv. Files that fail to decode are reported in the outcomes and skipped.
// A missing root fails with ErrNotFound.
func LoadImages(root string) ([]LoadedImage, []LoadOutcome, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("folder %q: %w", root, ErrNotFound)
		}
		return nil, nil, err
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("%q is not a folder: %w", root, ErrNotFound)
	}

	var images []LoadedImage
	var outcomes []LoadOutcome

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		img, err := ReadImage(path)
		if err != nil {
			log.Warn().Err(err).Str("file", path).Msg("skipping file")
			outcomes = append(outcomes, LoadOutcome{Path: path, Err: err})
			return nil
		}

		images = append(images, LoadedImage{Path: path, Image: img})
		outcomes = append(outcomes, LoadOutcome{Path: path})
		return nil
	})
	if err != nil {
		return nil, outcomes, err
	}

	return images, outcomes, nil
}

// ReadImage decodes a color image from disk as a float Field in [0, 255].
func ReadImage(path string) (Field, error) {
	m := gocv.IMRead(path, gocv.IMReadColor)
	defer m.Close()

	if m.Empty() {
		return Field{}, fmt.Errorf("%s: %w", path, ErrDecodeFailure)
	}

	return FieldFromMat(m)
}

// WriteImage encodes f to path. When stretch is set every channel is first
// mapped onto [0, 255], otherwise samples are saturated to 8 bits.
func WriteImage(path string, f Field, stretch bool) error {
	if stretch {
		f = Normalize(f)
		for i := range f.Data {
			f.Data[i] *= 255
		}
	}

	m, err := MatFromField(f)
	if err != nil {
		return err
	}
	defer m.Close()

	u8 := gocv.NewMat()
	defer u8.Close()
	m.ConvertTo(&u8, matType(gocv.MatTypeCV8U, f.Channels))

	if ok := gocv.IMWrite(path, u8); !ok {
		return fmt.Errorf("error writing image to %s", path)
	}
	return nil
}
