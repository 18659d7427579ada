// Copyright 2021 Silvio Böhler
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package completion

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// CreateCmd creates the command.
func CreateCmd(rootCmd *cobra.Command) *cobra.Command {
	c := &cobra.Command{
		Use:   "completion [bash|zsh]",
		Short: "output shell completion code [bash|zsh]",
		Long: `To load completions:

Bash:

$ source <(alere completion bash)

Zsh:

$ source <(alere completion zsh)
`,

		Args:      cobra.ExactValidArgs(1),
		ValidArgs: []string{"bash", "zsh"},

		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case `bash`:
				return rootCmd.GenBashCompletion(out)
			case `zsh`:
				if err := rootCmd.GenZshCompletion(out); err != nil {
					return err
				}
				_, err := io.WriteString(out, "\ncompdef _alere alere\n")
				return err
			}
			return fmt.Errorf("unknown shell: %s", args[0])
		},
	}

	return c
}
