package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"tubegrab/cmd"
	"tubegrab/config"
	"tubegrab/extractor"

	"github.com/schollz/progressbar/v3"
)

func main() {
	var (
		url      string
		formatID string
		server   bool
		port     int
	)

	flag.StringVar(&url, "url", "", "Media URL to probe or download")
	flag.StringVar(&formatID, "format", "", "Format id to download (probe first to list them)")
	flag.BoolVar(&server, "server", false, "Start in web server mode")
	flag.IntVar(&port, "port", 8080, "Port for web server mode")
	flag.Parse()

	// Server mode takes precedence
	if server {
		cmd.StartWebServer(port)
		return
	}

	if url == "" {
		flag.Usage()
		return
	}

	ex := extractor.NewYouTube(config.GetDownloadLocation())

	// Without a format id, probe and list what the source offers.
	if formatID == "" {
		info, err := ex.Probe(context.Background(), url)
		if err != nil {
			log.Fatalf("Error: %s", err)
		}

		fmt.Printf("%s (%ds)\n\n", info.Title, info.Duration)
		fmt.Printf("%-10s %-8s %-12s %s\n", "FORMAT", "EXT", "RESOLUTION", "SIZE")
		for _, f := range info.Formats {
			resolution := "audio only"
			if f.Resolution != nil {
				resolution = *f.Resolution
			}
			size := "?"
			if f.Filesize != nil {
				size = fmt.Sprintf("%d", *f.Filesize)
			}
			fmt.Printf("%-10s %-8s %-12s %s\n", f.ID, f.Ext, resolution, size)
		}
		return
	}

	bar := progressbar.NewOptions(100,
		progressbar.OptionSetDescription("downloading"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
	)

	filename, err := ex.Download(context.Background(), url, formatID, func(percent float64, speed, eta string) {
		bar.Set(int(percent))
		if speed != "" {
			bar.Describe(fmt.Sprintf("downloading (%s, ETA %s)", speed, eta))
		}
	})
	if err != nil {
		log.Fatalf("Cannot download %s: %s", url, err)
	}

	bar.Finish()
	fmt.Printf("\nSaved %s\n", filename)
}
