/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/gowannier/InputParameters"
	"github.com/notargets/gowannier/utils"
)

var (
	cfgFile string
	prof    interface{ Stop() }
)

var rootCmd = &cobra.Command{
	Use:   "gowannier",
	Short: "Real-space domains, k-paths and band interpolation for localized orbitals",
	Long: `
Builds Wigner-Seitz and MDRS R-space domains for a uniform k-grid, samples
high-symmetry k-paths and Fourier interpolates band structures from Bloch
data or bare tight-binding models described in a YAML input deck.

gowannier bands -I deck.yaml -o bands.dat.gz`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
		level := slog.LevelInfo
		if viper.GetBool("verbose") {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		switch p := viper.GetString("profile"); p {
		case "":
		case "cpu":
			prof = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet)
		case "mem":
			prof = profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.Quiet)
		default:
			err = fmt.Errorf("unknown profile %q, use cpu or mem", p)
		}
		return
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		slog.Debug("done", "command", cmd.Name(), "memory", utils.GetMemUsage())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// execute runs the selected command. cobra skips the post run hooks of a
// failed command, the profile is flushed here on every path.
func execute() error {
	defer stopProfile()
	return rootCmd.Execute()
}

func stopProfile() {
	if prof != nil {
		prof.Stop()
		prof = nil
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	def := utils.DefaultConfig()
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.gowannier.yaml)")
	pf.StringP("inputConditionsFile", "I", "", "YAML input deck with the lattice, grid, centers, k-path and model data")
	pf.StringP("output", "o", "", "output file, a .gz or .zst suffix compresses it (default stdout)")
	pf.BoolP("verbose", "v", false, "log at debug level")
	pf.String("profile", "", "write a cpu or mem profile to the working directory")
	pf.Int("parallel", def.ParallelDegree, "number of workers, 0 uses every CPU")
	pf.Float64("atol", def.Atol, "distance tolerance for equidistant images (Angstrom)")
	pf.Int("maxCell", def.MaxCell, "half width of the Wigner-Seitz search in supercell periods")
	pf.Int("searchCap", def.SearchCap, "largest degeneracy the neighbour search resolves")
	if err := viper.BindPFlags(pf); err != nil {
		panic(err)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".gowannier")
	}
	viper.SetEnvPrefix("GOWANNIER")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// baseConfig collects the tolerances from flags, environment and config
// file. Values in the input deck take precedence.
func baseConfig() (cfg utils.Config) {
	cfg = utils.DefaultConfig()
	cfg.Atol = viper.GetFloat64("atol")
	cfg.MaxCell = viper.GetInt("maxCell")
	cfg.SearchCap = viper.GetInt("searchCap")
	cfg.ParallelDegree = viper.GetInt("parallel")
	cfg.Logger = slog.Default()
	return
}

func processInput() (ip *InputParameters.InputParameters, cfg utils.Config, err error) {
	var (
		data []byte
		file = viper.GetString("inputConditionsFile")
	)
	if len(file) == 0 {
		err = fmt.Errorf("must supply an input deck (-I, --inputConditionsFile), for example:%s", exampleFile)
		return
	}
	if data, err = os.ReadFile(file); err != nil {
		return
	}
	ip = &InputParameters.InputParameters{}
	if err = ip.Parse(data); err != nil {
		err = fmt.Errorf("%s: %w", file, err)
		return
	}
	if err = ip.Validate(); err != nil {
		err = fmt.Errorf("%s: %w", file, err)
		return
	}
	cfg = ip.Config(baseConfig())
	if err = cfg.Validate(); err != nil {
		return
	}
	cfg.Logger.Debug("input deck read", "file", file, "title", ip.Title)
	return
}

const exampleFile = `
########################################
Title: "Simple cubic s-band"
Lattice:
  - [2.5, 0, 0]
  - [0, 2.5, 0]
  - [0, 0, 2.5]
Grid: [4, 4, 4]
Centers: [[0, 0, 0]] # Optional, selects MDRS
KPath:
  FirstSegmentPoints: 50
  Segments:
    - [{Label: G, Coord: [0, 0, 0]}, {Label: X, Coord: [0.5, 0, 0]}]
    - [{Label: X, Coord: [0.5, 0, 0]}, {Label: M, Coord: [0.5, 0.5, 0]}]
Hoppings: # Bare model, used when no Bloch data is given
  - {R: [0, 0, 0], Re: [[0]]}
  - {R: [1, 0, 0], Re: [[-1]]}
  - {R: [-1, 0, 0], Re: [[-1]]}
########################################
`

// openOutput returns the -o destination, stdout when unset. Names ending in
// .gz or .zst are compressed; the returned close function flushes them.
func openOutput(cmd *cobra.Command) (w io.Writer, closeFn func() error, err error) {
	name := viper.GetString("output")
	if len(name) == 0 {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	var (
		f            *os.File
		zw           io.WriteCloser
		AnyNewWriter func(io.Writer) (io.WriteCloser, error)
	)
	switch {
	case strings.HasSuffix(name, ".gz"):
		AnyNewWriter = func(a io.Writer) (io.WriteCloser, error) { return gzip.NewWriterLevel(a, gzip.BestCompression) }
	case strings.HasSuffix(name, ".zst"):
		AnyNewWriter = func(a io.Writer) (io.WriteCloser, error) {
			return zstd.NewWriter(a, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		}
	}
	if f, err = os.Create(name); err != nil {
		return
	}
	if AnyNewWriter == nil {
		return f, f.Close, nil
	}
	if zw, err = AnyNewWriter(f); err != nil {
		f.Close()
		return
	}
	closeFn = func() error {
		if err := zw.Close(); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	return zw, closeFn, nil
}
