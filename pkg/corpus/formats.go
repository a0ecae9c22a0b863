package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"golang.org/x/net/html"
)

// Format represents the different corpus file formats
type Format int

const (
	FormatUnknown Format = iota
	FormatTSV            // label<TAB>text per line
	FormatTOML           // [[sample]] tables
	FormatText           // one sample per file, label from the parent dir
	FormatHTML           // text content of a document, label from the parent dir
)

// ErrUnknownFormat is returned for files no reader exists for
var ErrUnknownFormat = errors.New("unknown corpus format")

// FormatInfo contains metadata about a corpus file format
type FormatInfo struct {
	Format      Format
	Description string
	Extensions  []string
}

var supportedFormats = map[Format]FormatInfo{
	FormatTSV: {
		Format:      FormatTSV,
		Description: "Tab separated samples",
		Extensions:  []string{".tsv"},
	},
	FormatTOML: {
		Format:      FormatTOML,
		Description: "TOML sample tables",
		Extensions:  []string{".toml"},
	},
	FormatText: {
		Format:      FormatText,
		Description: "Plain text document",
		Extensions:  []string{".txt"},
	},
	FormatHTML: {
		Format:      FormatHTML,
		Description: "HTML document",
		Extensions:  []string{".html", ".htm"},
	},
}

func (f Format) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Description
	}
	return "unknown"
}

// DetectFormat picks the format of a file from its extension
func DetectFormat(filename string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for format, info := range supportedFormats {
		for _, e := range info.Extensions {
			if ext == e {
				return format, nil
			}
		}
	}
	return FormatUnknown, fmt.Errorf("%w: %s", ErrUnknownFormat, filename)
}

// GetFormatInfo returns information about a specific format
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, exists := supportedFormats[format]
	return info, exists
}

// ReadFile parses every sample of a corpus file
func ReadFile(filename string) ([]Sample, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus file %s: %w", filename, err)
	}
	defer file.Close()

	var samples []Sample
	switch format {
	case FormatTSV:
		samples, err = readTSV(file, filename)
	case FormatTOML:
		samples, err = readTOML(file, filename)
	case FormatText:
		samples, err = readText(file, filename)
	case FormatHTML:
		samples, err = readHTML(file, filename)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	log.Debugf("Read %d samples from %s (%s)", len(samples), filename, format)
	return samples, nil
}

// dirLabel is the label of single document files
func dirLabel(filename string) string {
	return filepath.Base(filepath.Dir(filename))
}

func readTSV(r io.Reader, source string) ([]Sample, error) {
	var samples []Sample
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		label, text, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, fmt.Errorf("line %d: expected label<TAB>text", lineNum)
		}
		samples = append(samples, Sample{
			Label:  strings.TrimSpace(label),
			Text:   strings.TrimSpace(text),
			Source: fmt.Sprintf("%s:%d", source, lineNum),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}

type tomlCorpus struct {
	Samples []struct {
		Label string `toml:"label"`
		Text  string `toml:"text"`
	} `toml:"sample"`
}

func readTOML(r io.Reader, source string) ([]Sample, error) {
	var doc tomlCorpus
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}
	samples := make([]Sample, 0, len(doc.Samples))
	for i, s := range doc.Samples {
		samples = append(samples, Sample{
			Label:  strings.TrimSpace(s.Label),
			Text:   s.Text,
			Source: fmt.Sprintf("%s#%d", source, i),
		})
	}
	return samples, nil
}

func readText(r io.Reader, source string) ([]Sample, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return []Sample{{Label: dirLabel(source), Text: string(data), Source: source}}, nil
}

// skipped elements never hold document text
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"head":     true,
}

func readHTML(r io.Reader, source string) ([]Sample, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, text)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return []Sample{{Label: dirLabel(source), Text: strings.Join(parts, " "), Source: source}}, nil
}
