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

	"github.com/notargets/gowannier/rspace"
)

// DomainCmd represents the domain command
var DomainCmd = &cobra.Command{
	Use:   "domain",
	Short: "Print the Wigner-Seitz R-vectors of the grid, with MDRS translations when centers are given",
	Long: `
Prints the R-vectors and degeneracies of the Wigner-Seitz supercell of the
k-grid. When the deck lists orbital centers the MDRS translations of every
(R, m, n) follow, in the layout of a Wannier90 wsvec file.

gowannier domain -I deck.yaml`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ip, cfg, err := processInput()
		if err != nil {
			return
		}
		lat, err := ip.BuildLattice()
		if err != nil {
			return
		}
		if noMDRS, _ := cmd.Flags().GetBool("noMDRS"); noMDRS {
			ip.Centers = nil
		}
		dom, err := ip.BuildDomain(lat, cfg)
		if err != nil {
			return
		}
		w, closeFn, err := openOutput(cmd)
		if err != nil {
			return
		}
		if err = WriteDomain(w, ip.Title, dom); err != nil {
			closeFn()
			return
		}
		return closeFn()
	},
}

func init() {
	rootCmd.AddCommand(DomainCmd)
	DomainCmd.Flags().Bool("noMDRS", false, "ignore orbital centers and print the plain Wigner-Seitz domain")
}

func WriteDomain(w io.Writer, title string, dom rspace.Degenerate) error {
	var (
		bw    = bufio.NewWriter(w)
		rvecs = dom.Rvectors()
		degen = dom.Degeneracies()
	)
	fmt.Fprintf(bw, "## %s\n", title)
	fmt.Fprintf(bw, "%d\n", len(rvecs))
	for iR, R := range rvecs {
		fmt.Fprintf(bw, "%5d %5d %5d %5d\n", R[0], R[1], R[2], degen[iR])
	}
	if md, ok := dom.(rspace.Translated); ok {
		nw := md.NumOrbitals()
		fmt.Fprintf(bw, "## MDRS translations, %d orbitals\n", nw)
		for iR, R := range rvecs {
			for m := 0; m < nw; m++ {
				for n := 0; n < nw; n++ {
					T := md.Translations(iR, m, n)
					fmt.Fprintf(bw, "%5d %5d %5d %5d %5d\n", R[0], R[1], R[2], m+1, n+1)
					fmt.Fprintf(bw, "%5d\n", len(T))
					for _, t := range T {
						fmt.Fprintf(bw, "%5d %5d %5d\n", t[0], t[1], t[2])
					}
				}
			}
		}
	}
	return bw.Flush()
}
