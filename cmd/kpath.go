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
	"bufio"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/notargets/gowannier/kpath"
)

// KPathCmd represents the kpath command
var KPathCmd = &cobra.Command{
	Use:   "kpath",
	Short: "Sample the k-path of the input deck",
	Long: `
Expands the labeled segments of the deck into uniformly spaced fractional
k-points and prints them with the cumulative path distance and labels.

gowannier kpath -I deck.yaml`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ip, cfg, err := processInput()
		if err != nil {
			return
		}
		lat, err := ip.BuildLattice()
		if err != nil {
			return
		}
		interp, err := ip.BuildInterpolant(lat, cfg)
		if err != nil {
			return
		}
		w, closeFn, err := openOutput(cmd)
		if err != nil {
			return
		}
		if err = WriteKPath(w, interp); err != nil {
			closeFn()
			return
		}
		return closeFn()
	},
}

func init() {
	rootCmd.AddCommand(KPathCmd)
}

func WriteKPath(w io.Writer, ip *kpath.Interpolant) error {
	var (
		bw     = bufio.NewWriter(w)
		k      = ip.Kpoints()
		x      = ip.Distances()
		labels = make(map[int]string)
	)
	for _, l := range ip.Labels() {
		labels[l.Index] = l.Name
	}
	fmt.Fprintf(bw, "%d\n", len(k))
	for i := range k {
		fmt.Fprintf(bw, "%12.8f %12.8f %12.8f %14.8f %s\n", k[i][0], k[i][1], k[i][2], x[i], labels[i])
	}
	return bw.Flush()
}
