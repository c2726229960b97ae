package banner

import (
	"fmt"

	"chatsync/pkg/config"
)

const banner = `
 ██████╗██╗  ██╗ █████╗ ████████╗███████╗██╗   ██╗███╗   ██╗ ██████╗
██╔════╝██║  ██║██╔══██╗╚══██╔══╝██╔════╝╚██╗ ██╔╝████╗  ██║██╔════╝
██║     ███████║███████║   ██║   ███████╗ ╚████╔╝ ██╔██╗ ██║██║
██║     ██╔══██║██╔══██║   ██║   ╚════██║  ╚██╔╝  ██║╚██╗██║██║
╚██████╗██║  ██║██║  ██║   ██║   ███████║   ██║   ██║ ╚████║╚██████╗
 ╚═════╝╚═╝  ╚═╝╚═╝  ╚═╝   ╚═╝   ╚══════╝   ╚═╝   ╚═╝  ╚═══╝ ╚═════╝
`

// PrintWithEff prints the startup banner using the effective config so the
// operator can verify what the process actually resolved.
func PrintWithEff(eff config.EffectiveConfigResult, version string) {
	addr := eff.Addr
	if addr == "" && eff.Config != nil {
		addr = eff.Config.Addr()
	}
	archive := eff.ArchivePath
	if archive == "" && eff.Config != nil {
		archive = eff.Config.Server.ArchivePath
	}
	src := eff.Source
	if src == "" {
		src = "flags"
	}

	fmt.Print(banner)
	fmt.Println("== Config =====================================================")
	fmt.Printf("Listen:   %s\n", addr)
	fmt.Printf("Archive:  %s\n", archive)
	if version != "" {
		fmt.Printf("Version:  %s\n", version)
	}
	fmt.Printf("Config:   %s\n", src)

	engine := ""
	if eff.Config != nil {
		engine = eff.Config.Server.Engine
	}
	if engine == "" {
		engine = "nethttp"
	}
	fmt.Printf("Engine:   %s\n", engine)

	fmt.Println("\n== Examples ===================================================")
	fmt.Println("curl -X POST 'http://<host>:<port>/v1/session/open' -d '{\"chat_id\":\"123@g.us\"}'")
	fmt.Println("curl -X POST 'http://<host>:<port>/v1/session/send' -d '{\"body\":\"hello\"}'")
	fmt.Println("curl 'http://<host>:<port>/v1/session/viewport'")

	fmt.Println("\n== Production? =================================================")
	if eff.Config != nil && len(eff.Config.Security.PushTokens) > 0 {
		fmt.Printf("- Push tokens: OK (%d)\n", len(eff.Config.Security.PushTokens))
	} else {
		fmt.Println("- Push tokens: MISSING (push ingress is open)")
	}
	if eff.Config != nil && eff.Config.Server.TLS.CertFile != "" && eff.Config.Server.TLS.KeyFile != "" {
		fmt.Println("- TLS: configured")
	} else {
		fmt.Println("- TLS: unconfigured")
	}
	if archive != "" {
		fmt.Printf("- Archive: %s\n", archive)
	} else {
		fmt.Println("- Archive: not set (use --archive or CHATSYNC_ARCHIVE_PATH)")
	}
	if eff.Config != nil && eff.Config.Sweeper.Enabled {
		if eff.Config.Sweeper.Cron != "" {
			fmt.Printf("- Sweeper: enabled (cron=%s)\n", eff.Config.Sweeper.Cron)
		} else {
			fmt.Println("- Sweeper: enabled")
		}
	} else {
		fmt.Println("- Sweeper: disabled")
	}

	fmt.Println("\n== Logs: =================================================")
}
