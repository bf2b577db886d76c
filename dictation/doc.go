// Package dictation models a browser voice session as an explicit state
// machine:
//
//	idle|completed|failed --start--> recording
//	recording --result--> completed
//	recording --error---> failed
//	recording --end-----> idle
//	completed|failed --end--> unchanged
//
// Every other pair fails with ErrInvalidTransition. The recognizer is an
// injected capability, so the same machine serves browser and test input.
package dictation
