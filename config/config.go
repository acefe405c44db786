// Package config loads the building description and the scripted calls the
// simulator raises.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"elevatordispatch/assigner"
	"elevatordispatch/types"

	"github.com/golang/glog"
	"github.com/joho/godotenv"
	"github.com/xyproto/randomstring"
	"gopkg.in/yaml.v3"
)

const identifierLen = 10

// Call is one scripted button press. Car is set for a destination pressed
// inside that car; otherwise it is a floor call going Direction.
type Call struct {
	Car       *int   `yaml:"Car"`
	Floor     int    `yaml:"Floor"`
	Direction string `yaml:"Direction"`
}

func (c Call) IsInternal() bool {
	return c.Car != nil
}

type Config struct {
	Identifier       string        `yaml:"Identifier"`
	NumFloors        int           `yaml:"NumFloors"`
	NumCars          int           `yaml:"NumCars"`
	Assignment       string        `yaml:"Assignment"`
	FixedCar         int           `yaml:"FixedCar"`
	TravelDuration   time.Duration `yaml:"TravelDuration"`
	DoorOpenDuration time.Duration `yaml:"DoorOpenDuration"`
	Calls            []Call        `yaml:"Calls"`
}

func Default() Config {
	return Config{
		NumFloors:        10,
		NumCars:          1,
		Assignment:       "nearest",
		TravelDuration:   2 * time.Second,
		DoorOpenDuration: 3 * time.Second,
	}
}

// Load reads the YAML file at path on top of Default, then applies
// overrides from the env file at envPath and the process environment.
// Either path may be empty; a missing env file is ignored.
func Load(path, envPath string) (Config, error) {
	c := Default()

	if path != "" {
		if err := c.decodeFile(path); err != nil {
			return c, err
		}
	}

	env := map[string]string{}
	if envPath != "" {
		var err error
		env, err = godotenv.Read(envPath)
		if errors.Is(err, fs.ErrNotExist) {
			env = map[string]string{}
		} else if err != nil {
			return c, fmt.Errorf("read %s: %w", envPath, err)
		}
	}
	if err := c.applyEnv(env); err != nil {
		return c, err
	}

	if c.Identifier == "" {
		c.Identifier = randomstring.EnglishFrequencyString(identifierLen)
		glog.Warningf("config: no identifier provided, generated %q", c.Identifier)
	}

	return c, c.Validate()
}

func (c *Config) decodeFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func lookup(env map[string]string, key string) (string, bool) {
	if v, ok := os.LookupEnv(key); ok {
		return v, true
	}
	v, ok := env[key]
	return v, ok
}

func (c *Config) applyEnv(env map[string]string) error {
	if v, ok := lookup(env, "ELEVATOR_IDENTIFIER"); ok {
		c.Identifier = v
	}
	if v, ok := lookup(env, "ELEVATOR_ASSIGNMENT"); ok {
		c.Assignment = v
	}
	for key, dst := range map[string]*int{
		"ELEVATOR_FLOORS":    &c.NumFloors,
		"ELEVATOR_CARS":      &c.NumCars,
		"ELEVATOR_FIXED_CAR": &c.FixedCar,
	} {
		v, ok := lookup(env, key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", key, v, err)
		}
		*dst = n
	}
	return nil
}

func (c Config) Validate() error {
	if c.NumFloors < 1 {
		return fmt.Errorf("NumFloors %d: %w", c.NumFloors, types.ErrInvalidFloor)
	}
	if c.NumCars < 1 {
		return fmt.Errorf("NumCars %d: %w", c.NumCars, types.ErrNoCarsAvailable)
	}
	if c.TravelDuration < 0 || c.DoorOpenDuration < 0 {
		return fmt.Errorf("negative duration: travel %v, door %v", c.TravelDuration, c.DoorOpenDuration)
	}
	if _, err := assigner.ByName(c.Assignment); err != nil {
		return err
	}
	if c.FixedCar < 0 || c.FixedCar >= c.NumCars {
		return fmt.Errorf("FixedCar %d: %w", c.FixedCar, types.ErrUnknownCar)
	}

	for i, call := range c.Calls {
		if call.Floor < 0 || call.Floor >= c.NumFloors {
			return fmt.Errorf("call %d: floor %d: %w", i, call.Floor, types.ErrInvalidFloor)
		}
		if call.IsInternal() {
			if *call.Car < 0 || *call.Car >= c.NumCars {
				return fmt.Errorf("call %d: car %d: %w", i, *call.Car, types.ErrUnknownCar)
			}
			continue
		}
		if _, err := types.ParseDirection(call.Direction); err != nil {
			return fmt.Errorf("call %d: %w", i, err)
		}
	}
	return nil
}

// Policy returns the configured assignment policy. The fixed policy sends
// every call to FixedCar.
func (c Config) Policy() assigner.Policy {
	p, err := assigner.ByName(c.Assignment)
	if err != nil {
		return assigner.Nearest{}
	}
	if _, ok := p.(assigner.Fixed); ok {
		return assigner.Fixed{CarID: c.FixedCar}
	}
	return p
}
