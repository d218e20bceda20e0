// Package cli implements the taskctl command line client.
package cli

import (
	"net/http"
	"strings"
	"time"

	"taskmanager/internal/client"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "TASKS"

// NewRootCmd builds the taskctl command tree. hc is used for API calls; nil
// means a default client.
func NewRootCmd(hc *http.Client) *cobra.Command {
	v := viper.New()
	v.SetDefault("api_url", client.DefaultBaseURL)
	v.SetDefault("timeout", 15*time.Second)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "taskctl",
		Short:         "Manage tasks on a Task Manager API",
		Long:          "taskctl lists, creates, edits and deletes tasks through the Task Manager REST API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("api-url", client.DefaultBaseURL, "API base URL (env TASKS_API_URL)")
	root.PersistentFlags().Duration("timeout", 15*time.Second, "request timeout (env TASKS_TIMEOUT)")
	root.PersistentFlags().Bool("no-color", false, "disable styled output")
	_ = v.BindPFlag("api_url", root.PersistentFlags().Lookup("api-url"))
	_ = v.BindPFlag("timeout", root.PersistentFlags().Lookup("timeout"))
	_ = v.BindPFlag("no_color", root.PersistentFlags().Lookup("no-color"))

	env := &env{v: v, hc: hc}
	root.AddCommand(
		newListCmd(env),
		newGetCmd(env),
		newCreateCmd(env),
		newEditCmd(env),
		newDeleteCmd(env),
	)
	return root
}

// env carries what every subcommand resolves at run time.
type env struct {
	v  *viper.Viper
	hc *http.Client
}

func (e *env) store() *client.Store {
	hc := e.hc
	if hc == nil {
		hc = &http.Client{Timeout: e.v.GetDuration("timeout")}
	}
	return client.NewStore(client.NewAPI(e.v.GetString("api_url"), hc))
}

func (e *env) renderer(cmd *cobra.Command) *renderer {
	return newRenderer(cmd.OutOrStdout(), e.v.GetBool("no_color"))
}
