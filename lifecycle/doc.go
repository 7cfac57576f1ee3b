// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package lifecycle runs the background scheduler that ends expired polls.

	sched := lifecycle.New(svc, cfg.TickInterval, cfg.SchedulerWorkers)
	go sched.Run(ctx)

Each tick lists active polls whose deadline has passed and closes them
through the same pipeline as a manual close, with reason "expired". At most
Workers polls are closed at once.

A manual close can win the race against the scheduler. The scheduler then
gets models.ErrAlreadyClosed, logs it at debug level and moves on. Only the
winner publishes.
*/
package lifecycle
