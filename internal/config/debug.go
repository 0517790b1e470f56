package config

import "os"

func IsDebug() bool {
	return os.Getenv("SNIP_DEBUG") == "1"
}
