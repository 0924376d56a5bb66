package miztl

const (
	// Name is the application name.
	Name = "miztl"

	// Description is a short description of the application.
	Description = "AI-powered translation of DCS mission archives"
)

// Build information. Release builds override these with ldflags:
//
//	go build -ldflags "-X github.com/ZaguanLabs/miztl.GitCommit=$(git rev-parse HEAD)"
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// FullVersion returns Version with the short commit hash appended when known.
func FullVersion() string {
	if GitCommit == "" || GitCommit == "unknown" {
		return Version
	}
	short := GitCommit
	if len(short) > 7 {
		short = short[:7]
	}
	return Version + "+" + short
}

// UserAgent returns the User-Agent sent with provider requests.
func UserAgent() string {
	return Name + "/" + Version
}
