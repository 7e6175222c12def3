// Package job enqueues log records into River, a PostgreSQL backed job queue,
// so that slow destinations can be served by worker processes.
//
// The Enqueuer runs River in insert-only mode:
//
//	enq, err := job.NewEnqueuer(pool)
//	if err != nil {
//	    return err
//	}
//	err = enq.Enqueue(ctx, job.RecordArgs{Message: "hello"}, job.InQueue("logs"), job.MaxAttempts(3))
//
// Workers register a river.Worker for RecordArgs (kind "log_record").
package job
