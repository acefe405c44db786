package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"elevatordispatch/config"
	"elevatordispatch/dispatch"

	"github.com/golang/glog"
)

func main() {
	configPath := flag.String("config", "elevator_config.yaml", "Path of the building configuration")
	envPath := flag.String("env", ".env", "Path of an optional env file with overrides")
	flag.Parse()
	defer glog.Flush()

	cfg, err := config.Load(*configPath, *envPath)
	if err != nil {
		glog.Exitf("Invalid configuration: %v", err)
	}
	glog.Infof("Starting building %q: %d floors, %d cars, %s assignment",
		cfg.Identifier, cfg.NumFloors, cfg.NumCars, cfg.Assignment)

	building, err := dispatch.New(cfg.NumFloors, cfg.NumCars,
		dispatch.WithPolicy(cfg.Policy()),
		dispatch.WithTravelDuration(cfg.TravelDuration),
		dispatch.WithDoorOpenDuration(cfg.DoorOpenDuration),
		dispatch.WithListener(newDisplay()),
	)
	if err != nil {
		glog.Exitf("Cannot create building: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runScenario(ctx, building, cfg.Calls); err != nil {
		glog.Errorf("Simulation ended early: %v", err)
	}
}
