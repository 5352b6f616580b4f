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

	"github.com/spf13/cobra"

	"github.com/notargets/gowannier/InputParameters"
	"github.com/notargets/gowannier/bands"
	"github.com/notargets/gowannier/lattice"
	"github.com/notargets/gowannier/utils"
)

// BandsCmd represents the bands command
var BandsCmd = &cobra.Command{
	Use:   "bands",
	Short: "Interpolate the band structure along the k-path",
	Long: `
Interpolates the bands of the deck along its k-path. Bloch data on the grid
is carried through the Wigner-Seitz domain, or the MDRS domain when orbital
centers are given; without Bloch data the bare Hoppings are evaluated.

gowannier bands -I deck.yaml -o bands.dat.gz`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ip, cfg, err := processInput()
		if err != nil {
			return
		}
		b, err := RunBands(ip, cfg)
		if err != nil {
			return
		}
		w, closeFn, err := openOutput(cmd)
		if err != nil {
			return
		}
		if err = writeBands(w, ip.Title, b); err != nil {
			closeFn()
			return
		}
		return closeFn()
	},
}

func init() {
	rootCmd.AddCommand(BandsCmd)
}

func RunBands(ip *InputParameters.InputParameters, cfg utils.Config) (b *bands.Bands, err error) {
	var lat lattice.Lattice
	if lat, err = ip.BuildLattice(); err != nil {
		return
	}
	interp, err := ip.BuildInterpolant(lat, cfg)
	if err != nil {
		return
	}
	if ip.Bloch == nil {
		tb, err := ip.BuildTightBinding(lat)
		if err != nil {
			return nil, err
		}
		if b, err = bands.FromTightBinding(tb, interp.Kpoints(), cfg); err != nil {
			return nil, err
		}
		b.Distances, b.Labels = interp.Distances(), interp.Labels()
		return b, nil
	}
	grid, err := ip.BuildGrid()
	if err != nil {
		return
	}
	gauge, eig, err := ip.BuildBloch()
	if err != nil {
		return
	}
	dom, err := ip.BuildDomain(lat, cfg)
	if err != nil {
		return
	}
	return bands.InterpolatePath(grid, gauge, eig, dom, interp, cfg)
}

func writeBands(w io.Writer, title string, b *bands.Bands) (err error) {
	if _, err = fmt.Fprintf(w, "## %s\n", title); err != nil {
		return
	}
	for _, l := range b.Labels {
		fmt.Fprintf(w, "## %-8s %14.8f\n", l.Name, b.Distances[l.Index])
	}
	return b.Write(w)
}
