package main

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
)

func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r := uint8((x * 255) / width)
			g := uint8((y * 255) / height)
			b := uint8((x + y) % 255)
			img.Set(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}

	return img
}

func main() {
	// Create metadata-free files covering every filename convention
	out := "fixtures"
	if len(os.Args) > 1 {
		out = os.Args[1]
	}
	img := createTestImage(400, 300)

	files := []string{
		"pixel/PXL_20230615_143000123.jpg",
		"pixel/PXL_20230615_143001.MP.jpg",
		"camera/IMG_20240315_143022.jpg",
		"camera/IMG_20240315_143022.jpeg",
		"screenshots/Screenshot_20221231-235959_Chrome.png",
		"messages/IMG-20240315-WA0001.jpg",
		"messages/VID-20240315-WA0001.jpg",
		"lightroom/LRM_20200101_000001.jpg",
		"facebook/FB_IMG_1690000000000.jpg",
		"snapchat/snapchat-123456789.jpg",
		"invalid/PXL_20231301_120000.jpg", // month 13
		"invalid/IMG_20230230_120000.png", // February 30
		"other/holiday.jpg",
		"other/scan.png",
	}

	for _, filename := range files {
		path := filepath.Join(out, filename)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			fmt.Printf("Error creating %s: %v\n", filepath.Dir(path), err)
			continue
		}
		file, err := os.Create(path)
		if err != nil {
			fmt.Printf("Error creating %s: %v\n", path, err)
			continue
		}

		if strings.HasSuffix(path, ".png") {
			err = png.Encode(file, img)
		} else {
			err = jpeg.Encode(file, img, &jpeg.Options{Quality: 85})
		}
		file.Close()
		if err != nil {
			fmt.Printf("Error encoding %s: %v\n", path, err)
			continue
		}
		fmt.Printf("Created: %s\n", path)
	}

	// A file whose content does not match its extension
	corrupt := filepath.Join(out, "corrupt", "PXL_20230615_143000.jpg")
	if err := os.MkdirAll(filepath.Dir(corrupt), 0755); err == nil {
		if err := os.WriteFile(corrupt, []byte("not a jpeg"), 0644); err == nil {
			fmt.Printf("Created: %s\n", corrupt)
		}
	}
}
