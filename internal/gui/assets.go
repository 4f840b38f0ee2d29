package gui

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/musclemesh/internal/swarm"
)

var imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".bmp": true, ".gif": true}

// assetFiles lists the loadable images in dir in name order.
func assetFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// loadAssets loads every image in dir as a texture. Files that fail to load
// are logged and skipped; the result may be empty.
func loadAssets(dir string) []swarm.Asset {
	if dir == "" {
		return nil
	}
	files, err := assetFiles(dir)
	if err != nil {
		slog.Warn("read asset dir", "dir", dir, "err", err)
		return nil
	}
	var assets []swarm.Asset
	for _, path := range files {
		tex := rl.LoadTexture(path)
		if tex.ID == 0 || tex.Width == 0 || tex.Height == 0 {
			slog.Warn("load asset", "path", path)
			continue
		}
		rl.SetTextureFilter(tex, rl.FilterBilinear)
		assets = append(assets, swarm.Asset{Width: float64(tex.Width), Height: float64(tex.Height), Handle: tex})
	}
	slog.Debug("assets loaded", "dir", dir, "count", len(assets), "files", len(files))
	return assets
}

// glowAssets generates n radial glow textures with hues spread around the
// colour wheel. They stand in when no image assets are available.
func glowAssets(n, size int) []swarm.Asset {
	assets := make([]swarm.Asset, 0, n)
	for i := 0; i < n; i++ {
		hue := float32(i) * 360 / float32(n)
		img := rl.GenImageGradientRadial(size, size, 0.1, rl.ColorFromHSV(hue, 0.55, 1), rl.NewColor(0, 0, 0, 0))
		tex := rl.LoadTextureFromImage(img)
		rl.UnloadImage(img)
		assets = append(assets, swarm.Asset{Width: float64(size), Height: float64(size), Handle: tex})
	}
	return assets
}

func unloadAssets(assets []swarm.Asset) {
	for _, a := range assets {
		if tex, ok := a.Handle.(rl.Texture2D); ok {
			rl.UnloadTexture(tex)
		}
	}
}
