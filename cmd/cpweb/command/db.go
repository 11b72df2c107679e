// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package command

import "github.com/spf13/cobra"

const credsRenewalMessage = `The passwords of the admin and normal
database roles are renewed during the initialization. New passwords are
written into the .pgpass.new file in the pass-dir folder first, and that
file replaces the .pgpass file after a successful commit. If the process
is interrupted, the next connection attempt tries both files.`

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database management actions",
	Long: `Database management actions can be chosen by sub-commands.
For fresh installation in a development or production environment,
the init-dev or init-prod may be used and for upgrading an existing
installation, the migrate may be used.`,
}

func init() {
	rootCmd.AddCommand(dbCmd)
}
