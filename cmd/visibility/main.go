package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/chrissnell/visitbudget/pkg/budget"
	"github.com/chrissnell/visitbudget/pkg/coords"
	"github.com/chrissnell/visitbudget/pkg/visibility"
)

func main() {
	var raStr, decStr, startStr, endStr string
	var cadence, airmass float64
	flag.StringVar(&raStr, "ra", "", "Right ascension, decimal degrees or HH:MM:SS")
	flag.StringVar(&decStr, "dec", "", "Declination, decimal degrees or ±DD:MM:SS")
	flag.StringVar(&startStr, "start", "", "First night (YYYY-MM-DD), defaults to today")
	flag.StringVar(&endStr, "end", "", "Last night (YYYY-MM-DD), defaults to the first night")
	flag.Float64Var(&cadence, "cadence", 0, "Visit cadence in hours; when set, visits per night are printed too")
	flag.Float64Var(&airmass, "airmass", 2, "Airmass limit")
	flag.Parse()

	if raStr == "" || decStr == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -ra <ra> -dec <dec> [-start YYYY-MM-DD] [-end YYYY-MM-DD] [-cadence hours]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	p, err := coords.ParsePointing(raStr, decStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing coordinates: %v\n", err)
		os.Exit(1)
	}

	start := time.Now().UTC()
	if startStr != "" {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing start date: %v\n", err)
			os.Exit(1)
		}
	}
	end := start
	if endStr != "" {
		end, err = time.Parse("2006-01-02", endStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing end date: %v\n", err)
			os.Exit(1)
		}
	}

	opts := visibility.DefaultOptions()
	opts.MinAltitude = visibility.AltitudeForAirmass(airmass)
	calc, err := visibility.New(visibility.LSST, opts, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	nights, err := calc.Nights(p, budget.Window{Start: start, End: end})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing visibility: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Visibility of RA %.5f°, Dec %.5f° from %s (airmass < %.2f)\n",
		p.RA, p.Dec, visibility.LSST.Name, airmass)
	total := 0.0
	for _, n := range nights {
		fmt.Printf("  %s  visible %5.2f h  dark %5.2f h  moon %3.0f%%",
			n.Date.Format("2006-01-02"), n.VisibleHours, n.DarkHours, n.MoonIllumination*100)
		if cadence > 0 {
			fmt.Printf("  visits %d", budget.VisitsPerNight([]float64{n.VisibleHours}, cadence)[0])
		}
		fmt.Println()
		total += n.VisibleHours
	}
	fmt.Printf("  Total:      %.2f h over %d nights\n", total, len(nights))
}
