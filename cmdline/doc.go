// Package cmdline assembles flat argument vectors for direct process creation.
//
// A command line is a command name followed by an ordered list of entries.
// Each entry is either a Group (positional tokens plus named parameters) or a
// nested Unit (a subcommand with its own name and entries):
//
//	argv := cmdline.Build("git", []cmdline.Entry{
//	    cmdline.NewGroup(nil, cmdline.Params{{"C", "/src"}}),
//	    cmdline.NewUnit("log", cmdline.NewGroup([]string{"HEAD"}, cmdline.Params{{"oneline", true}})),
//	})
//	// [git -C /src log --oneline HEAD]
//
// Named parameters are rendered with ResolveParameterName: a single-letter
// key becomes a short option, longer keys become long options, and leading
// underscores force one spelling or the other. A true value emits the option
// alone, nil or false omits it, anything else is appended as its own token.
//
// There is no shell grammar here: no quoting, globbing or pipelines.
package cmdline
