// Package sequence runs pipe-delimited command scripts against the CEC
// controller.
//
// A sequence is a list of steps separated by "|". Each step is an action
// name with an optional parenthesised, comma-separated argument list:
//
//	standby()|sleep(0.5)|press(volume_up,5)|activate(4)
//
// Steps run strictly in order. sleep(seconds) pauses and produces no
// result; every other step appends its return value to the result list.
//
// Action names are resolved against an explicit Surface. Only registered
// actions can run, and every name in a sequence is checked before the first
// step executes, so an unknown name never leaves a sequence half-applied.
package sequence
