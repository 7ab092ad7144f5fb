package config

import "flag"

// Flag values shared by every objtool command. BindFlags registers them on a
// command's FlagSet.
var (
	flagConfig          = new(string)
	flagDebug           = new(bool)
	flagPerSG           = new(bool)
	flagNoImplicitSplit = new(bool)
	flagStream          = new(bool)
	flagCharset         = new(string)
	flagLogFile         = new(string)
)

// BindFlags registers the global flags on fs.
func BindFlags(fs *flag.FlagSet) {
	fs.StringVar(flagConfig, "config", "", "Path to config file")
	fs.BoolVar(flagDebug, "debug", false, "Enable debug logging")
	fs.BoolVar(flagPerSG, "per-smoothing-group", false, "Create one sub-mesh per smoothing group number")
	fs.BoolVar(flagNoImplicitSplit, "no-implicit-split", false, "Do not start a new object when vertices follow faces")
	fs.BoolVar(flagStream, "stream", false, "Hand instances to the sink as soon as they complete")
	fs.StringVar(flagCharset, "charset", "", "Charset of object, group and material names")
	fs.StringVar(flagLogFile, "log-file", "", "Also write logs to this file")
}

// ConfigPath returns the explicit config path if provided via -config.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagPerSG {
		cfg.Parser.PerSmoothingGroup = true
	}
	if *flagNoImplicitSplit {
		cfg.Parser.ImplicitObjectSplit = false
	}
	if *flagStream {
		cfg.Parser.StreamInstances = true
	}
	if *flagCharset != "" {
		cfg.Mesh.NameCharset = *flagCharset
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
