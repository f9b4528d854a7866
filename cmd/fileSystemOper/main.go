package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	fat12 "github.com/eminakgun/fs-fat12"
)

var verbose bool

func main() {
	app := cli.App{
		Name:      "fileSystemOper",
		Usage:     "Operate on an existing FAT12 image file",
		ArgsUsage: "IMAGE_PATH  OPERATION  [ARGS...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "verbose",
				Usage:       "trace each operation",
				Destination: &verbose,
			},
		},
		Action: fileSystemOper,
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}

func trace(format string, args ...any) {
	if verbose {
		log.Printf(format, args...)
	}
}

func fileSystemOper(context *cli.Context) error {
	if context.NArg() < 2 {
		return cli.Exit(
			"usage: fileSystemOper <imagePath> <operation> [args...]", 2)
	}

	imagePath := context.Args().Get(0)
	operation := context.Args().Get(1)
	args := context.Args().Slice()[2:]

	trace("loading image %s", imagePath)
	volume, err := fat12.Load(imagePath)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	mutated, err := dispatch(volume, operation, args, os.Stdout)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if mutated {
		trace("flushing image %s", imagePath)
		if err := volume.Flush(); err != nil {
			return cli.Exit(err.Error(), 1)
		}
	}
	return nil
}

// dispatch runs one operation against the loaded volume and reports
// whether the image was mutated and needs a flush.
func dispatch(
	volume *fat12.Volume, operation string, args []string, out io.Writer,
) (bool, error) {
	trace("operation %s %v", operation, args)

	switch operation {
	case "mkdir":
		if len(args) != 1 {
			return false, fmt.Errorf("mkdir needs exactly one path")
		}
		return true, volume.Mkdir(args[0])

	case "dir":
		if len(args) != 1 {
			return false, fmt.Errorf("dir needs exactly one path")
		}
		entries, err := volume.List(args[0])
		if err != nil {
			return false, err
		}
		printListing(out, entries)
		return false, nil

	case "del":
		if len(args) != 1 {
			return false, fmt.Errorf("del needs exactly one path")
		}
		return true, volume.Delete(args[0])

	case "write":
		if len(args) != 2 {
			return false, fmt.Errorf("write needs an image path and a host path")
		}
		return true, volume.WriteFile(args[0], args[1])

	case "read":
		if len(args) != 2 {
			return false, fmt.Errorf("read needs an image path and a host path")
		}
		return false, volume.ReadFile(args[0], args[1])

	case "chmod":
		if len(args) != 2 {
			return false, fmt.Errorf("chmod needs an image path and a permission spec")
		}
		return true, volume.Chmod(args[0], args[1])

	case "dumpe2fs":
		return false, volume.Dumpe2fs(out)
	}

	return false, fmt.Errorf("unsupported operation %q", operation)
}

func printListing(out io.Writer, entries []fat12.Dirent) {
	for _, entry := range entries {
		kind := "-"
		if entry.IsDir() {
			kind = "d"
		}
		fmt.Fprintf(
			out,
			"%s%s  %8d  %s  %s\n",
			kind,
			entry.ModeString(),
			entry.Size,
			entry.LastModified.Format("2006-01-02 15:04"),
			entry.Name,
		)
	}
}
