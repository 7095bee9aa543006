package core

var Version = "unknown"

func SetVersion(v string) {
	if v != "" {
		Version = v
	}
}
