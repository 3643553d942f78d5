package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Roche85/tensorforest/rock-share/base/config"
	"github.com/Roche85/tensorforest/rock-share/base/logger"
)

func main() {
	configDir := flag.String("config", "", "directory holding config.yml")
	flag.Parse()

	// 一些初始化配置
	all, err := config.InitConfig(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed, err:%v\n", err)
		os.Exit(1)
	}
	l := all.Logger
	ss := all.Server
	if err := logger.InitLogger(l.Level, "tensorforest", l.Path, time.Duration(l.MaxAge), time.Duration(l.RotationTime), l.RotationSize, ss.SentryDsn); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed, err:%v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Infof("forest params:\n%s", all.Forest.String())

	r := newRouter(&all.Forest)
	address := ":" + ss.HttpPort
	if err := r.Run(address); err != nil {
		logger.Errorf("http server on %s stopped, err:%v", address, err)
	}
}
