// savetool inspects and maintains snapshot files.
//
//	savetool -in save.bks                 summary
//	savetool -in save.bks -json          raw JSON dump
//	savetool -in save.bks -strip -out x  copy without destroyed walls
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"backrooms/snapshot"
)

func main() {
	var (
		in    = flag.String("in", "", "Snapshot file to read.")
		out   = flag.String("out", "", "Write result here (with -strip).")
		asJSON = flag.Bool("json", false, "Dump the decoded snapshot as JSON.")
		strip  = flag.Bool("strip", false, "Drop the destroyed-wall list (repairs the world).")
	)
	flag.Parse()

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}

	s, err := snapshot.Read(*in)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *strip {
		if *out == "" {
			fmt.Fprintln(os.Stderr, "savetool: -strip requires -out")
			os.Exit(2)
		}
		s.Destroyed = nil
		if err := snapshot.Write(*out, s); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", *out)
		return
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("version:   %d\n", s.Version)
	fmt.Printf("seed:      %d\n", s.Seed)
	fmt.Printf("position:  (%.1f, %.1f, %.1f)\n", s.PlayerPos.X, s.PlayerPos.Y, s.PlayerPos.Z)
	fmt.Printf("yaw/pitch: %.3f / %.3f rad\n", s.PlayerYaw, s.PlayerPitch)
	fmt.Printf("destroyed: %d walls\n", len(s.Destroyed))
	fmt.Printf("playtime:  %s\n", time.Duration(s.PlaytimeSeconds*float64(time.Second)).Round(time.Second))
}
