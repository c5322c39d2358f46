// SPDX-License-Identifier: MPL-2.0

package main

import "github.com/kospack/kospack/cmd/kospack"

func main() {
	cmd.Execute()
}
