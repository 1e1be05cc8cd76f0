// Command demo requests a route from a running route broker and polls for
// the result until the calculation reaches a terminal state.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type location struct {
	Lat  float64
	Lon  float64
	Name string
}

var standardLocations = map[string]location{
	"bird":      {-54.025, -38.044, "bird"},
	"falklands": {-51.731, -57.706, "falklands"},
	"halley":    {-75.059, -25.840, "halley"},
	"rothera":   {-67.764, -68.02, "rothera"},
	"kep":       {-54.220, -36.433, "kep"},
	"signy":     {-60.720, -45.480, "signy"},
	"nyalesund": {78.929, 11.928, "nyalesund"},
	"harwich":   {51.949, 1.255, "harwich"},
	"rosyth":    {56.017, -3.440, "rosyth"},
}

var (
	serverURL   string
	startArg    string
	endArg      string
	delaySecs   int
	maxRequests int
	force       bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "demo",
		Short: "Request a route from the route broker and poll until it is ready",
		Long: "Requests a route between two locations, each given as a named standard\n" +
			"location (" + locationNames() + ")\nor as \"lat,lon\".",
		RunE: run,
	}

	rootCmd.Flags().StringVar(&serverURL, "url", "http://localhost:8080", "base URL of the route broker")
	rootCmd.Flags().StringVar(&startArg, "start", "", "start location (name or lat,lon)")
	rootCmd.Flags().StringVar(&endArg, "end", "", "end location (name or lat,lon)")
	rootCmd.Flags().IntVar(&delaySecs, "delay", 30, "seconds between status requests")
	rootCmd.Flags().IntVar(&maxRequests, "requests", 10, "maximum number of status requests")
	rootCmd.Flags().BoolVar(&force, "force", false, "force recalculation even if a matching route exists")
	rootCmd.MarkFlagRequired("start")
	rootCmd.MarkFlagRequired("end")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	start, err := parseLocation(startArg)
	if err != nil {
		return err
	}
	end, err := parseLocation(endArg)
	if err != nil {
		return err
	}

	body, err := json.Marshal(map[string]interface{}{
		"start_lat":         start.Lat,
		"start_lon":         start.Lon,
		"end_lat":           end.Lat,
		"end_lon":           end.Lon,
		"start_name":        start.Name,
		"end_name":          end.Name,
		"force_recalculate": force,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Sending POST request to %s/api/route\n", serverURL)
	resp, err := http.Post(serverURL+"/api/route", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	payload, err := decodeBody(resp)
	if err != nil {
		return err
	}
	printJSON(payload)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("route request failed with status %d", resp.StatusCode)
	}

	if payload["status"] == "FAILURE" {
		return fmt.Errorf("route request failed: %v", payload["info"])
	}

	// A matched route arrives with its geometry inline.
	if payload["json"] != nil {
		fmt.Println("Route returned directly.")
		return nil
	}

	id, _ := payload["id"].(string)
	if id == "" {
		return fmt.Errorf("no job id returned")
	}

	for attempt := 1; attempt <= maxRequests; attempt++ {
		fmt.Printf("\nWaiting %d seconds before status request %d of %d.\n", delaySecs, attempt, maxRequests)
		time.Sleep(time.Duration(delaySecs) * time.Second)

		resp, err := http.Get(fmt.Sprintf("%s/api/route/%s", serverURL, id))
		if err != nil {
			return err
		}
		payload, err := decodeBody(resp)
		if err != nil {
			return err
		}

		status, _ := payload["status"].(string)
		fmt.Printf("Route calculation %s.\n", status)
		printJSON(payload)

		switch status {
		case "SUCCESS":
			return nil
		case "FAILURE", "REVOKED":
			return fmt.Errorf("route calculation %s", status)
		}
	}

	fmt.Printf("Max number of status requests sent. To keep polling, run: curl %s/api/route/%s\n", serverURL, id)
	return nil
}

func parseLocation(arg string) (location, error) {
	if loc, ok := standardLocations[strings.ToLower(arg)]; ok {
		return loc, nil
	}

	parts := strings.Split(arg, ",")
	if len(parts) != 2 {
		return location{}, fmt.Errorf("unknown location %q: use one of %s or lat,lon", arg, locationNames())
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return location{}, fmt.Errorf("invalid latitude in %q", arg)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return location{}, fmt.Errorf("invalid longitude in %q", arg)
	}
	return location{Lat: lat, Lon: lon, Name: arg}, nil
}

func locationNames() string {
	names := make([]string, 0, len(standardLocations))
	for name := range standardLocations {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func decodeBody(resp *http.Response) (map[string]interface{}, error) {
	defer resp.Body.Close()
	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return payload, nil
}

func printJSON(v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(out))
}
