package paths

import (
	"flag"
)

// SetupFilePathFlag registers a string flag defaulting to wherever Find
// locates fileName, or to "" if it is nowhere to be found.
func SetupFilePathFlag(fileName, flagName, usage string, flagPtr *string) {
	flag.StringVar(flagPtr, flagName, Find(fileName), usage)
}
