package manifest

// Manifest file names, fixed so update clients can fetch them by convention.
const (
	// FullManifestName describes the full OTA package.
	FullManifestName = "ota.json"
	// IncrementalManifestName describes the delta package.
	IncrementalManifestName = "incremental_ota.json"
)

// DownloadSources lists the mirrors a package can be fetched from. The JSON
// keys are display names shown verbatim by update clients.
type DownloadSources struct {
	OneDrive    string `json:"OneDrive"`
	Sourceforge string `json:"Sourceforge"`
}

// FullManifest is the release document for a full OTA package. The
// filename/file_name and filesize/file_size pairs carry identical values:
// older update clients read the first spelling, current ones the second.
type FullManifest struct {
	Version         string          `json:"version"`
	Date            int64           `json:"date"`
	URL             string          `json:"url"`
	DownloadSources DownloadSources `json:"download_sources"`
	Filename        string          `json:"filename"`
	FileName        string          `json:"file_name"`
	Filesize        string          `json:"filesize"`
	FileSize        string          `json:"file_size"`
	// MD5 stays alongside SHA-512 for legacy clients that verify it.
	MD5    string `json:"md5"`
	SHA512 string `json:"sha_512"`
}

// IncrementalManifest is the release document for a delta package. The
// pre-build identifier ties it to the exact base build it applies on top of.
type IncrementalManifest struct {
	Version             string          `json:"version"`
	Date                int64           `json:"date"`
	URL                 string          `json:"url"`
	DownloadSources     DownloadSources `json:"download_sources"`
	FileName            string          `json:"file_name"`
	FileSize            string          `json:"file_size"`
	SHA512              string          `json:"sha_512"`
	PreBuildIncremental string          `json:"pre_build_incremental"`
}

// Output reports what one generation pass wrote. Nil documents were not
// requested.
type Output struct {
	// FullPath and Full describe the written full manifest.
	FullPath string
	Full     *FullManifest
	// IncrementalPath and Incremental describe the written delta manifest.
	IncrementalPath string
	Incremental     *IncrementalManifest
}
