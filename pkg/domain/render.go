package domain

// Format is the artifact format produced by the renderer.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

// Known reports whether the format is one of the supported values.
func (f Format) Known() bool {
	switch f {
	case FormatSVG, FormatPNG, FormatPDF:
		return true
	}
	return false
}

// RenderJob names the output destination for one run. BaseName must be
// unique per concurrent run; both output files share it.
type RenderJob struct {
	Dir      string
	BaseName string
	Format   Format
}

// Artifact is the pair of files a successful render leaves on disk:
// the accepted source text and the rendered diagram.
type Artifact struct {
	SourcePath   string `json:"source_path"`
	ArtifactPath string `json:"artifact_path"`
}
