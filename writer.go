package xlog

import "bytes"

/*********************************************************************************
io.Writer interface implementation

The ModuleClient implements io.Writer so it can be handed to code that only
knows how to write to a stream (fmt.Fprintf, log.SetOutput, exec.Cmd.Stderr).
The semantics are:
 - Lvl(level) sets the current level used by subsequent Write calls.
 - Write(p) logs p as one line at the current level through the safe path
   and returns len(p) on success, 0 and a non-nil error on failure.

This allows patterns like:
  fmt.Fprintf(client.Lvl(LVL_WARN), "disk low: %d%%", percent)
But remember that the current level is shared by all users of the client!
*/

// Lvl sets the client's current level (used by Write) and returns the same
// client for convenient chaining.
func (mc *ModuleClient) Lvl(level Level) *ModuleClient {
	mc.curLevel = normLevel(level)
	return mc
}

// Write implements io.Writer. A single trailing line feed of p is dropped
// since the line feed option adds one. A filtered line still counts as
// written. nil or empty payloads are zero-length writes with no error.
func (mc *ModuleClient) Write(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}
	msg := p
	if mc.args[mc.curLevel].Options&OPT_LF != 0 {
		msg = bytes.TrimSuffix(msg, []byte{'\n'})
		if len(msg) == 0 {
			return len(p), nil
		}
	}
	_, err = mc.logger.Safe().Print(mc.Args(mc.curLevel), string(msg))
	if err == nil {
		n = len(p)
	}
	return
}
