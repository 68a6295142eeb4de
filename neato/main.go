package main

import (
	polyglot "github.com/nextabc-lab/polyglot-neato"
	"github.com/nextabc-lab/polyglot-neato/nodes"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// 使用Polyglot的MQTT通讯，注册控制器节点，并等待退出。

func main() {
	configFile := pflag.StringP("config", "c", polyglot.DefaultConfName, "TOML配置文件")
	dryRun := pflag.Bool("dry-run", false, "不连接Polyglot，Host调用只记录在内存中")
	verbose := pflag.BoolP("verbose", "v", false, "输出冗余日志")
	pflag.Parse()

	globals := polyglot.DefaultGlobals()
	if config, err := polyglot.LoadConfigByName(*configFile); nil == err {
		polyglot.ApplyConfig(globals, config)
	} else if !errors.Is(err, polyglot.ErrConfigNotExist) {
		polyglot.ZapSugarLogger.Error("加载配置文件出错: ", err)
	}
	if *verbose {
		globals.LogVerbose = true
	}

	var ctx polyglot.Context
	if *dryRun {
		ctx = polyglot.CreateDryRunContext(globals)
	} else {
		ctx = polyglot.CreateContext(globals)
	}

	polyglot.RunWith(ctx, func(ctx polyglot.Context) error {
		if err := ctx.WaitConfig(); nil != err {
			return err
		}
		controller := nodes.NewBaseController(ctx.Host(), nodes.ControllerOptions{
			Id:                 "neatoController",
			Address:            "neatoctrl",
			Name:               "Neato Controller",
			ServerFile:         globals.ServerFile,
			ProfileVersionFile: globals.ProfileVersionFile,
			Log:                ctx.Log(),
			LogLevel:           ctx.LogLevel(),
		})
		if err := ctx.Host().AddNode(controller); nil != err {
			return errors.WithMessage(err, "add controller")
		}
		ctx.LogIfVerbose(func(log *zap.SugaredLogger) {
			data := controller.ServerData()
			log.Debugf("控制器节点[%s]已注册，版本：%s", controller.Address(), data.Version)
		})
		return ctx.TermAwait()
	})
}
