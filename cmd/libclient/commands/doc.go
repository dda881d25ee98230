// Package commands defines the libclient CLI.
//
// Commands
//
//   - services             List the configured client handles
//   - tracks search        Find tracks by artist through the youtube service
//   - tracks retry         Set a track's youtube code and optionally re-queue it
//   - tracks sweep         Find tracks in a download status across artists
//   - artists genres       Show artists with their genres
//   - artists add-genre    Link a genre to an artist
//   - artists remove-genre Unlink a genre from an artist
//   - genres               List all genres
//   - history              Show the local mutation journal
//
// The root command loads configuration, initializes logging and builds the
// library runtime before any subcommand runs; it is closed afterwards.
package commands
