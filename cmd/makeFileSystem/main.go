package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	fat12 "github.com/eminakgun/fs-fat12"
	"github.com/eminakgun/fs-fat12/profiles"
)

func main() {
	app := cli.App{
		Name:      "makeFileSystem",
		Usage:     "Create an empty FAT12 image file",
		ArgsUsage: "BLOCK_SIZE_KB  IMAGE_PATH",
		Action:    makeFileSystem,
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}

func makeFileSystem(context *cli.Context) error {
	if context.NArg() != 2 {
		return cli.Exit(
			"usage: makeFileSystem <blockSizeKB> <imagePath>", 2)
	}

	blockSizeKB, err := strconv.ParseFloat(context.Args().Get(0), 64)
	if err != nil {
		return cli.Exit("the block size must be a number in KB", 2)
	}

	profile, err := profiles.ForBlockSizeKB(blockSizeKB)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	imagePath := context.Args().Get(1)
	volume, err := fat12.Format(imagePath, profile)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if err := volume.Flush(); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	fmt.Printf(
		"created %s: %d bytes, %d-byte blocks\n",
		imagePath,
		profile.TotalSizeBytes(),
		profile.BlockSizeBytes(),
	)
	return nil
}
