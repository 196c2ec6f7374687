// Command simak65run is a reference host for the simak65 core: it loads a
// flat binary into a ram.RAM bank, wires an irqline.Level as a pollable IRQ
// source, and steps the core either for a fixed instruction count or until
// it raises an error.
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/avkaminski/simak65/cpu"
	"github.com/avkaminski/simak65/irqline"
	"github.com/avkaminski/simak65/ram"
)

func main() {
	app := &cli.App{
		Name:  "simak65run",
		Usage: "run a flat 6502 binary against the simak65 core",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "load",
				Usage:    "path to a flat binary to load into RAM",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "org",
				Usage: "load address for the binary, hex (e.g. 8000 or 0x8000)",
				Value: "8000",
			},
			&cli.UintFlag{
				Name:  "ramsize",
				Usage: "RAM bank size, must be a power of two up to 65536",
				Value: 1 << 16,
			},
			&cli.Uint64Flag{
				Name:  "steps",
				Usage: "number of instructions to execute; 0 runs until a fatal error",
				Value: 1000,
			},
			&cli.BoolFlag{
				Name:  "trace",
				Usage: "log each decoded instruction as it executes",
			},
			&cli.BoolFlag{
				Name:  "detect-tight-loops",
				Usage: "treat a branch targeting itself as fatal instead of spinning forever",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx *cli.Context) error {
	org, err := parseAddr(ctx.String("org"))
	if err != nil {
		return fmt.Errorf("simak65run: bad --org: %w", err)
	}

	data, err := os.ReadFile(ctx.String("load"))
	if err != nil {
		return fmt.Errorf("simak65run: reading %s: %w", ctx.String("load"), err)
	}

	bank, err := ram.New(int(ctx.Uint("ramsize")))
	if err != nil {
		return fmt.Errorf("simak65run: %w", err)
	}
	bank.LoadAt(org, data)
	bank.SetVector(cpu.RstVector, org)

	irq := &irqline.Level{}

	c := cpu.New()
	c.Init(bank)
	c.Trace = ctx.Bool("trace")
	c.DetectTightLoops = ctx.Bool("detect-tight-loops")

	var cycles uint64
	c.Rst(&cycles)

	max := ctx.Uint64("steps")
	for n := uint64(0); max == 0 || n < max; n++ {
		if irq.Raised() {
			c.IRQ(&cycles)
			continue
		}
		if err := c.Step(&cycles); err != nil {
			fmt.Printf("halted after %d instructions, %d cycles: %v\n", n, cycles, err)
			return nil
		}
	}
	fmt.Printf("ran %d instructions, %d cycles\n", max, cycles)
	return nil
}

// parseAddr accepts a bare hex value (the common form for a load address,
// e.g. "8000") or a 0x-prefixed value. A string that is not a valid
// 16-bit hex number is retried with strconv's base-prefix rules, so a
// decimal value is read as decimal only when it is not also valid hex.
func parseAddr(s string) (uint16, error) {
	if s == "" {
		return 0, fmt.Errorf("empty address")
	}
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		v, err = strconv.ParseUint(s, 0, 16)
		if err != nil {
			return 0, err
		}
	}
	return uint16(v), nil
}
