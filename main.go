// SPDX-License-Identifier: MPL-2.0

package main

import cmd "libris-cli/cmd/libris"

func main() {
	cmd.Execute()
}
