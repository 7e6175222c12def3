// Package storage uploads log archives to S3-compatible object storage.
//
//	store, err := storage.New(storage.Config{
//	    Bucket:    "logs",
//	    Region:    "eu-central-1",
//	    AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
//	    SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
//	})
//	if err != nil {
//	    return err
//	}
//	key := storage.ObjectKey("logs", "app", time.Now(), ".jsonl")
//	err = store.Put(ctx, key, body, "application/x-ndjson")
//
// S3 failures are reported as ErrNotFound, ErrAccessDenied or ErrUploadFailed.
package storage
