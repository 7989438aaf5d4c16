package pdf

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// extractPageImages extracts the embedded page images for the selected
// pages into dir using pdfcpu and returns the largest image per page plus
// its filename. The caller owns dir and its lifecycle.
func extractPageImages(path string, pages []int, dir string) (map[int]image.Image, map[int]string, error) {
	var pageStrings []string
	if len(pages) > 0 {
		pageStrings = make([]string, len(pages))
		for i, p := range pages {
			pageStrings[i] = strconv.Itoa(p)
		}
	}

	if err := api.ExtractImagesFile(path, dir, pageStrings, nil); err != nil {
		return nil, nil, fmt.Errorf("failed to extract images from PDF: %w", err)
	}

	images := make(map[int]image.Image)
	files := make(map[int]string)
	err := filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		pageNum, err := parsePageFromFilename(info.Name())
		if err != nil {
			return nil // not a page image
		}
		img, err := loadImageFile(p)
		if err != nil || img == nil {
			return nil // skip unreadable images
		}
		// Keep the largest image per page; scanned pages usually carry one
		// full-page raster plus small decorations.
		if prev, ok := images[pageNum]; ok && area(prev) >= area(img) {
			return nil
		}
		images[pageNum] = img
		files[pageNum] = info.Name()
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to collect extracted images: %w", err)
	}
	return images, files, nil
}

func area(img image.Image) int {
	b := img.Bounds()
	return b.Dx() * b.Dy()
}

func loadImageFile(path string) (image.Image, error) {
	file, err := os.Open(path) //nolint:gosec // G304: reading our own extraction output
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	img, _, err := image.Decode(file)
	return img, err
}

// parsePageFromFilename extracts the page number from a pdfcpu extracted
// filename of the form page_<num>_image_<idx>.<ext>.
func parsePageFromFilename(filename string) (int, error) {
	if !strings.HasPrefix(filename, "page_") {
		return 0, errors.New("not a page file")
	}
	parts := strings.Split(filename, "_")
	if len(parts) < 2 {
		return 0, errors.New("invalid filename format")
	}
	pageNum, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, errors.New("invalid page number")
	}
	return pageNum, nil
}

func sortedKeys(m map[int]image.Image) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// ParsePageRange parses a page range string like "1-5" or "1,3,5". An empty
// string selects all pages.
func ParsePageRange(pageRange string) ([]int, error) {
	if pageRange == "" {
		return nil, nil
	}

	var pages []int
	for _, part := range strings.Split(pageRange, ",") {
		tokenPages, err := parseRangeToken(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		pages = append(pages, tokenPages...)
	}
	return pages, nil
}

// parseRangeToken parses either a single page token ("3") or a range ("1-5").
func parseRangeToken(part string) ([]int, error) {
	if strings.Contains(part, "-") {
		rangeParts := strings.Split(part, "-")
		if len(rangeParts) != 2 {
			return nil, fmt.Errorf("invalid range format: %s", part)
		}
		start, err := strconv.Atoi(strings.TrimSpace(rangeParts[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid start page: %s", rangeParts[0])
		}
		end, err := strconv.Atoi(strings.TrimSpace(rangeParts[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid end page: %s", rangeParts[1])
		}
		if start < 1 || end < 1 {
			return nil, fmt.Errorf("page numbers must be positive: %s", part)
		}
		if start > end {
			return nil, fmt.Errorf("start page %d greater than end page %d", start, end)
		}
		out := make([]int, 0, end-start+1)
		for i := start; i <= end; i++ {
			out = append(out, i)
		}
		return out, nil
	}
	page, err := strconv.Atoi(part)
	if err != nil {
		return nil, fmt.Errorf("invalid page number: %s", part)
	}
	if page < 1 {
		return nil, fmt.Errorf("page number must be positive: %d", page)
	}
	return []int{page}, nil
}
