package cmd

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/cloudfetch/s3fetch/pkg/storage"
	"github.com/cloudfetch/s3fetch/pkg/transfer"
)

const S3FetchVersion = "0.1.0"

var rootCmd = &cobra.Command{
	Use:               "s3fetch",
	Short:             "Download a single S3 object to a local file, sequentially or as concurrent byte ranges",
	Example:           "s3fetch --bucket example-bucket --object path/to/object --destination ./object --multipart",
	Version:           S3FetchVersion,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		bucket, _ := cmd.Flags().GetString("bucket")
		object, _ := cmd.Flags().GetString("object")
		destination, _ := cmd.Flags().GetString("destination")
		multipart, _ := cmd.Flags().GetBool("multipart")
		chunkSpec, _ := cmd.Flags().GetString("chunk-size")
		concurrency, _ := cmd.Flags().GetInt("concurrency")

		destination, err := expandDestination(destination)
		if err != nil {
			die("invalid destination path: %v", err)
		}
		chunkSize, err := humanize.ParseBytes(chunkSpec)
		if err != nil {
			die("invalid chunk size %q: %v", chunkSpec, err)
		}

		store, err := storage.NewS3Store(ctx, bucket)
		if err != nil {
			die("could not set up storage client: %v", err)
		}
		t := transfer.New(store,
			transfer.WithChunkSize(int64(chunkSize)),
			transfer.WithConcurrency(concurrency))
		written, err := t.Run(ctx, transfer.Request{
			Bucket:      bucket,
			Key:         object,
			Destination: destination,
			Multipart:   multipart,
		})
		if err != nil {
			die("could not download object: %v", err)
		}
		fmt.Printf("Wrote %d\n", written)
	},
}

func init() {
	rootCmd.Flags().String("bucket", "", "bucket containing the object")
	rootCmd.Flags().String("object", "", "key of the object to download")
	rootCmd.Flags().String("destination", "", "local path to write the object to (overwritten if it exists)")
	rootCmd.Flags().Bool("multipart", false, "download the object as concurrent byte ranges")
	rootCmd.Flags().String("chunk-size", "10MiB", "byte range size used with --multipart")
	rootCmd.Flags().Int("concurrency", 10, "maximum in-flight range requests used with --multipart")
	_ = rootCmd.MarkFlagRequired("bucket")
	_ = rootCmd.MarkFlagRequired("object")
	_ = rootCmd.MarkFlagRequired("destination")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, err = fmt.Fprintln(os.Stderr, err)
		if err != nil {
			return
		}
		os.Exit(1)
	}
}
