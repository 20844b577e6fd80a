// Copyright 2026 The AXIS Harness authors. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newVectorsCmd() *cobra.Command {
	cfg := &config{}

	cmd := &cobra.Command{
		Use:   "vectors",
		Short: "List the test sequence",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := load(cfg)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tBLOCKS\tSETS\tPAUSE\tEXPECT\tNOTE")

			for _, v := range list {
				expect := "match"
				if v.ExpectMismatch {
					expect = "mismatch"
				}

				fmt.Fprintf(w, "%s\t%d\t%d\t%t\t%s\t%s\n", v.Name, len(v.Plaintext), len(v.Expected), v.Pause, expect, v.Note)
			}

			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&cfg.vectors, "vectors", "f", "", "YAML vector file (default: builtin sequence)")

	return cmd
}
