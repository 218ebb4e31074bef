package memorial

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cjy-OIer/blog/models"
)

// ErrUnknownPhoto is returned for a photo reference that is neither "main" nor an index.
var ErrUnknownPhoto = errors.New("memorial: unknown photo")

const (
	// MsgNoPhotoLink replaces a photo that has no image yet.
	MsgNoPhotoLink   = "请先添加照片链接"
	takenUnknown     = "待填写"
	takenNoPhoto     = "请先添加照片"
	mainTitle        = "永恒的回忆"
	mainDesc         = "主纪念照片"
	defaultWallTitle = "纪念照片"
)

// PhotoWall is the main memorial photo plus the wall thumbnails.
type PhotoWall struct {
	Main models.Photo   `yaml:"main"`
	Wall []models.Photo `yaml:"wall"`
}

// LoadPhotoWall reads a YAML manifest. A missing file yields an empty wall.
func LoadPhotoWall(path string) (PhotoWall, error) {
	var w PhotoWall
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return w, nil
	}
	if err != nil {
		return w, fmt.Errorf("read photo manifest: %w", err)
	}
	if err := yaml.Unmarshal(b, &w); err != nil {
		return w, fmt.Errorf("parse photo manifest %s: %w", path, err)
	}
	return w, nil
}

// PhotoView is what the photo viewer shows for one photo.
type PhotoView struct {
	Which       string
	Src         string
	Title       string
	Desc        string
	Taken       string
	HasImage    bool
	Placeholder string // shown instead of the image
	Prev        string // empty when there is no navigation
	Next        string
}

// View resolves "main" or a wall index. Wall indexes wrap around in both directions.
func (w PhotoWall) View(which string) (PhotoView, error) {
	which = strings.TrimSpace(which)
	if which == "main" {
		v := PhotoView{Which: which, Src: w.Main.Image(), Title: mainTitle, Desc: mainDesc}
		if w.Main.Title != "" {
			v.Title = w.Main.Title
		}
		if w.Main.Desc != "" {
			v.Desc = w.Main.Desc
		}
		v.fillTaken(w.Main)
		return v, nil
	}

	idx, err := strconv.Atoi(which)
	if err != nil {
		return PhotoView{}, ErrUnknownPhoto
	}
	n := len(w.Wall)
	if n == 0 {
		v := PhotoView{Which: which, Title: defaultWallTitle}
		v.fillTaken(models.Photo{})
		return v, nil
	}
	idx = wrap(idx, n)
	p := w.Wall[idx]
	v := PhotoView{
		Which: strconv.Itoa(idx),
		Src:   p.Image(),
		Title: p.Title,
		Desc:  p.Desc,
		Prev:  strconv.Itoa(wrap(idx-1, n)),
		Next:  strconv.Itoa(wrap(idx+1, n)),
	}
	if v.Title == "" {
		v.Title = defaultWallTitle
	}
	v.fillTaken(p)
	return v, nil
}

func (v *PhotoView) fillTaken(p models.Photo) {
	v.HasImage = v.Src != ""
	if !v.HasImage {
		v.Placeholder = MsgNoPhotoLink
	}
	switch {
	case !v.HasImage:
		v.Taken = takenNoPhoto
	case p.Taken != "":
		v.Taken = p.Taken
	default:
		v.Taken = takenUnknown
	}
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}
