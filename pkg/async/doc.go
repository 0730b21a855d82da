// Package async runs a function in its own goroutine and hands back a Future
// for its result.
//
// The relay uses it to start a connection's send-loop as an independent task
// while the receive-loop keeps the calling goroutine; the handler cancels the
// task's context and then awaits the Future so the goroutine never outlives
// its connection.
//
// # Usage
//
//	ctx, cancel := context.WithCancel(parent)
//	task := async.Async(ctx, conn, sendLoop)
//
//	err := receiveLoop(parent, conn)
//	cancel()
//	if _, sendErr := task.Await(); sendErr != nil {
//	    // the receive side decides the outcome, sendErr is informational
//	}
//
// If the context is already cancelled when Async is called the function is
// not started at all and the Future completes with the context error. Panics
// inside the function are recovered and reported as ErrPanic.
package async
