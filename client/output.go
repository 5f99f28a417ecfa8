package client

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sagarc03/filekeep"
)

const timeLayout = "2006-01-02 15:04:05"

// Formatter formats results for output.
type Formatter interface {
	FormatUpload(w io.Writer, result UploadResult) error
	FormatFile(w io.Writer, result filekeep.GetFileResult) error
	FormatDownload(w io.Writer, result *DownloadResult) error
	FormatDelete(w io.Writer, results []DeleteResult) error
	FormatList(w io.Writer, result filekeep.ListResult) error
	FormatBuckets(w io.Writer, buckets []filekeep.BucketInfo) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error
	FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text. In quiet mode only ids are
// printed, which makes the output usable in scripts.
type HumanFormatter struct {
	Quiet bool
}

func (f *HumanFormatter) FormatUpload(w io.Writer, result UploadResult) error {
	if f.Quiet {
		_, _ = fmt.Fprintln(w, result.Record.ID)
		return nil
	}
	_, _ = fmt.Fprintf(w, "Uploaded: %s -> %s\n", result.LocalPath, result.Record.FilePath)
	_, _ = fmt.Fprintf(w, "  ID:   %s\n", result.Record.ID)
	_, _ = fmt.Fprintf(w, "  Type: %s\n", result.Record.ContentType)
	return nil
}

func (f *HumanFormatter) FormatFile(w io.Writer, result filekeep.GetFileResult) error {
	if f.Quiet {
		_, _ = fmt.Fprintln(w, result.DownloadURL)
		return nil
	}
	file := result.File
	_, _ = fmt.Fprintf(w, "ID:       %s\n", file.ID)
	_, _ = fmt.Fprintf(w, "Name:     %s\n", file.FileName)
	_, _ = fmt.Fprintf(w, "Path:     %s\n", file.FilePath)
	_, _ = fmt.Fprintf(w, "Type:     %s\n", file.ContentType)
	_, _ = fmt.Fprintf(w, "Size:     %s\n", formatSize(file.Size))
	_, _ = fmt.Fprintf(w, "Created:  %s\n", file.CreatedAt.Format(timeLayout))
	_, _ = fmt.Fprintf(w, "Download: %s\n", result.DownloadURL)
	return nil
}

func (f *HumanFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	if f.Quiet {
		return nil
	}
	if result.LocalPath == "-" {
		_, _ = fmt.Fprintf(w, "Downloaded: %s (%s)\n", result.File.FilePath, formatSize(result.Size))
	} else {
		_, _ = fmt.Fprintf(w, "Downloaded: %s -> %s (%s)\n", result.File.FilePath, result.LocalPath, formatSize(result.Size))
	}
	return nil
}

func (f *HumanFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.ID, r.Err)
			continue
		}
		if !f.Quiet {
			_, _ = fmt.Fprintf(w, "Deleted: %s\n", r.ID)
		}
	}
	return nil
}

func (f *HumanFormatter) FormatList(w io.Writer, result filekeep.ListResult) error {
	if f.Quiet {
		for i := range result.Items {
			_, _ = fmt.Fprintln(w, result.Items[i].ID)
		}
		return nil
	}

	if len(result.Items) == 0 {
		_, _ = fmt.Fprintln(w, "No files found")
		return nil
	}

	maxPathLen := 4 // "PATH"
	for i := range result.Items {
		maxPathLen = max(maxPathLen, len(result.Items[i].FilePath))
	}
	maxPathLen = min(maxPathLen, 60)

	_, _ = fmt.Fprintf(w, "%-36s  %-*s  %10s  %s\n", "ID", maxPathLen, "PATH", "SIZE", "CREATED")
	_, _ = fmt.Fprintf(w, "%s  %s  %s  %s\n", strings.Repeat("-", 36), strings.Repeat("-", maxPathLen), strings.Repeat("-", 10), strings.Repeat("-", 19))

	for i := range result.Items {
		item := &result.Items[i]
		path := item.FilePath
		if len(path) > maxPathLen {
			path = path[:maxPathLen-3] + "..."
		}
		_, _ = fmt.Fprintf(w, "%-36s  %-*s  %10s  %s\n",
			item.ID,
			maxPathLen,
			path,
			formatSize(item.Size),
			item.CreatedAt.Format(timeLayout),
		)
	}

	_, _ = fmt.Fprintf(w, "\n%d file(s)\n", len(result.Items))
	if result.NextCursor != "" {
		_, _ = fmt.Fprintf(w, "Next page: use --cursor %q\n", result.NextCursor)
	}
	return nil
}

func (f *HumanFormatter) FormatBuckets(w io.Writer, buckets []filekeep.BucketInfo) error {
	if f.Quiet {
		for i := range buckets {
			_, _ = fmt.Fprintln(w, buckets[i].Name)
		}
		return nil
	}
	if len(buckets) == 0 {
		_, _ = fmt.Fprintln(w, "No buckets found")
		return nil
	}
	for i := range buckets {
		b := &buckets[i]
		created := "-"
		if !b.CreatedAt.IsZero() {
			created = b.CreatedAt.Format(timeLayout)
		}
		_, _ = fmt.Fprintf(w, "%-30s  %s\n", b.Name, created)
	}
	return nil
}

func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error {
	maxNameLen := 4 // "NAME"
	for i := range profiles {
		maxNameLen = max(maxNameLen, len(profiles[i].Name))
	}
	maxNameLen = min(maxNameLen, 20)

	_, _ = fmt.Fprintf(w, "  %-*s  %s\n", maxNameLen, "NAME", "ENDPOINT")
	_, _ = fmt.Fprintf(w, "  %s  %s\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", 8))

	for i := range profiles {
		p := &profiles[i]
		marker := " "
		if p.Name == defaultName {
			marker = "*"
		}
		name := p.Name
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		}
		_, _ = fmt.Fprintf(w, "%s %-*s  %s\n", marker, maxNameLen, name, p.Endpoint)
	}
	return nil
}

func (f *HumanFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error {
	_, _ = fmt.Fprintf(w, "Name:     %s", profile.Name)
	if isDefault {
		_, _ = fmt.Fprintf(w, " (default)")
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Endpoint: %s\n", profile.Endpoint)
	timeout := "(default)"
	if profile.Timeout > 0 {
		timeout = profile.Timeout.String()
	}
	_, _ = fmt.Fprintf(w, "Timeout:  %s\n", timeout)
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

func (f *JSONFormatter) FormatUpload(w io.Writer, result UploadResult) error {
	return writeJSON(w, result)
}

func (f *JSONFormatter) FormatFile(w io.Writer, result filekeep.GetFileResult) error {
	return writeJSON(w, result)
}

func (f *JSONFormatter) FormatDownload(w io.Writer, result *DownloadResult) error {
	return writeJSON(w, result)
}

func (f *JSONFormatter) FormatDelete(w io.Writer, results []DeleteResult) error {
	// Convert errors to strings for JSON output
	type jsonResult struct {
		ID      string `json:"id"`
		Deleted bool   `json:"deleted"`
		Error   string `json:"error,omitempty"`
	}

	output := struct {
		Results []jsonResult `json:"results"`
	}{
		Results: make([]jsonResult, len(results)),
	}

	for i := range results {
		r := &results[i]
		jr := jsonResult{ID: r.ID, Deleted: r.Deleted}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		}
		output.Results[i] = jr
	}

	return writeJSON(w, output)
}

func (f *JSONFormatter) FormatList(w io.Writer, result filekeep.ListResult) error {
	if result.Items == nil {
		result.Items = []filekeep.FileRecord{}
	}
	return writeJSON(w, result)
}

func (f *JSONFormatter) FormatBuckets(w io.Writer, buckets []filekeep.BucketInfo) error {
	if buckets == nil {
		buckets = []filekeep.BucketInfo{}
	}
	return writeJSON(w, buckets)
}

func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	}
	return writeJSON(w, output)
}

func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error {
	type jsonProfile struct {
		Name     string `json:"name"`
		Endpoint string `json:"endpoint"`
		Timeout  string `json:"timeout,omitempty"`
		Default  bool   `json:"default,omitempty"`
	}

	output := struct {
		Profiles []jsonProfile `json:"profiles"`
	}{
		Profiles: make([]jsonProfile, len(profiles)),
	}

	for i := range profiles {
		p := &profiles[i]
		jp := jsonProfile{Name: p.Name, Endpoint: p.Endpoint, Default: p.Name == defaultName}
		if p.Timeout > 0 {
			jp.Timeout = p.Timeout.String()
		}
		output.Profiles[i] = jp
	}

	return writeJSON(w, output)
}

func (f *JSONFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error {
	output := struct {
		Name     string `json:"name"`
		Endpoint string `json:"endpoint"`
		Timeout  string `json:"timeout,omitempty"`
		Default  bool   `json:"default"`
	}{
		Name:     profile.Name,
		Endpoint: profile.Endpoint,
		Default:  isDefault,
	}
	if profile.Timeout > 0 {
		output.Timeout = profile.Timeout.String()
	}
	return writeJSON(w, output)
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.1f TB", float64(bytes)/TB)
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
