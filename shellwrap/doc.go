// Package shellwrap builds argument vectors from structured arguments and
// launches them as subprocesses.
//
// A Helper accumulates a command, its argument groups and nested
// subcommands:
//
//	cvs := shellwrap.Create("cvs", nil, cmdline.Params{{Key: "q", Value: true}})
//	up := cvs.Subcommand("update", nil, cmdline.Params{{Key: "C", Value: true}})
//	up.Cmdline() // [cvs -q update -C]
//
// Named parameters become options: a single letter is a short option, a
// longer key a long option, and one or two leading underscores force the
// short or long form. true renders a bare flag; nil and false omit the
// parameter.
//
// The keys _cwd, _env and _timeout are execution options rather than
// parameters. With a positive _timeout, Call returns a *process.TimedHandle
// whose watchdog terminates the process at the deadline:
//
//	p, err := shellwrap.Create("sleep", nil, cmdline.Params{{Key: "_timeout", Value: 0.1}}).
//	    Call(ctx, []string{"1"}, nil)
//	if err != nil {
//	    return err // could not start
//	}
//	err = p.Check() // *process.ProcessError: Process timed out after 0.1 seconds
//
// This is not a shell: no quoting, globbing or pipelines are applied.
package shellwrap
