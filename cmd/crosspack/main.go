// Command crosspack assembles six cube face images into the 4x3 cross
// layout. Faces follow the OpenGL cube map orientation.
package main

import (
	"fmt"
	"image"
	"log"
	"os"
	"strconv"

	"github.com/echoflaresat/photosphere/internal/imagefile"
	"github.com/echoflaresat/photosphere/panorama"
)

func main() {
	if len(os.Args) != 8 && len(os.Args) != 9 {
		fmt.Fprintf(os.Stderr, "Usage: %s <output.png> <+x> <-x> <+y> <-y> <+z> <-z> [tile]\n", os.Args[0])
		os.Exit(1)
	}

	output := os.Args[1]
	faces, err := loadFaces(os.Args[2:8])
	if err != nil {
		log.Fatal(err)
	}

	tile := faces[panorama.PosX].Bounds().Dx()
	if len(os.Args) == 9 {
		if tile, err = strconv.Atoi(os.Args[8]); err != nil {
			log.Fatalf("Invalid tile size: %v", err)
		}
	}

	cross, err := panorama.PackCross(faces, tile)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("-> creating %s\n", output)
	if err := imagefile.Save(output, cross); err != nil {
		log.Fatalf("Could not write %s: %v", output, err)
	}
}

// loadFaces reads the images in Face order.
func loadFaces(paths []string) ([6]image.Image, error) {
	var faces [6]image.Image
	for i, path := range paths {
		fmt.Printf("Processing %s (%v)\n", path, panorama.Faces[i])
		img, err := panorama.LoadImage(path)
		if err != nil {
			return faces, fmt.Errorf("could not load %q: %w", path, err)
		}
		faces[panorama.Faces[i]] = img
	}
	return faces, nil
}
