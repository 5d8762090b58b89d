package main

import (
	"context"
	"fmt"
	"os"

	"github.com/outofforest/parallel"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/outofforest/logger"
	"github.com/outofforest/voxel"
	"github.com/outofforest/voxel/noise"
	"github.com/outofforest/voxel/persistent"
	"github.com/outofforest/voxel/types"
)

func main() {
	log := logger.New(logger.DefaultConfig)
	ctx := logger.WithLogger(context.Background(), log)

	if err := rootCommand().ExecuteContext(ctx); err != nil {
		log.Error("Command failed", zap.Error(err))
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "voxel",
		Short:         "Generates and inspects compressed voxel volumes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(generateCommand(), infoCommand(), mergeCommand())
	return cmd
}

func generateCommand() *cobra.Command {
	var out, codec string
	var size, period, mergeEvery uint32
	var octaves uint8
	var materials uint16
	var seed uint64
	var threshold float64

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Fills new volume with fractal noise and saves it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			config := voxel.DefaultConfig()
			config.EdgeLength = size
			config.Seed = seed
			var err error
			if config.Codec, err = persistent.ParseCodec(codec); err != nil {
				return err
			}

			v, err := voxel.New(config)
			if err != nil {
				return err
			}

			fractal := noise.New(noise.Config{
				Octaves:   octaves,
				Period:    period,
				Seed:      seed,
				Threshold: threshold,
				Materials: materials,
			})
			if err := v.Generate(ctx, v.Region(), fractal.Material, mergeEvery); err != nil {
				return err
			}
			if err := v.Save(ctx, out); err != nil {
				return err
			}

			logStats(ctx, out, v)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Path of the volume file to create")
	cmd.Flags().StringVar(&codec, "codec", persistent.CodecZstd.String(), "Node table codec: none or zstd")
	cmd.Flags().Uint32Var(&size, "size", 256, "Edge length of the volume, power of two")
	cmd.Flags().Uint8Var(&octaves, "octaves", 9, "Number of noise octaves")
	cmd.Flags().Uint32Var(&period, "period", 0, "Lattice period of the first octave, 2^octaves if zero")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed of the noise and fingerprints")
	cmd.Flags().Float64Var(&threshold, "threshold", 0.5, "Noise value below which voxels are empty")
	cmd.Flags().Uint16Var(&materials, "materials", 4, "Number of non-empty materials")
	cmd.Flags().Uint32Var(&mergeEvery, "merge-every", 10, "Number of slices generated between merges")
	lo.Must0(cmd.MarkFlagRequired("out"))

	return cmd
}

type fileInfo struct {
	Path   string
	Volume *voxel.Volume
}

func infoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info FILE...",
		Short: "Loads volume files and reports their content",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files := lo.Map(args, func(path string, _ int) *fileInfo {
				return &fileInfo{Path: path}
			})

			err := parallel.Run(cmd.Context(), func(ctx context.Context, spawn parallel.SpawnFn) error {
				for i, file := range files {
					spawn(fmt.Sprintf("file-%d", i), parallel.Continue, func(ctx context.Context) error {
						v, err := voxel.Open(ctx, file.Path, voxel.DefaultConfig())
						if err != nil {
							return errors.WithMessagef(err, "opening %s failed", file.Path)
						}
						file.Volume = v
						return nil
					})
				}
				return nil
			})
			if err != nil {
				return err
			}

			for _, file := range files {
				logStats(cmd.Context(), file.Path, file.Volume)
			}
			logger.Get(cmd.Context()).Info("Total",
				zap.Int("files", len(files)),
				zap.Uint64("liveNodes", lo.SumBy(files, func(file *fileInfo) uint64 {
					return file.Volume.Stats().LiveNodes
				})))
			return nil
		},
	}
}

func mergeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "merge FILE",
		Short: "Canonicalizes volume file and writes it back",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			v, err := voxel.Open(ctx, args[0], voxel.DefaultConfig())
			if err != nil {
				return err
			}
			if err := v.Save(ctx, args[0]); err != nil {
				return err
			}

			logStats(ctx, args[0], v)
			return nil
		},
	}
}

func logStats(ctx context.Context, path string, v *voxel.Volume) {
	stats := v.Stats()
	fields := []zap.Field{
		zap.String("path", path),
		zap.Uint32("edgeLength", v.EdgeLength()),
		zap.Uint64("liveNodes", stats.LiveNodes),
		zap.Uint64("collisionMismatches", stats.CollisionMismatches),
	}

	if bounds, found := v.ComputeBounds(func(material types.MaterialID) bool {
		return material != types.Empty
	}); found {
		x, y, z := bounds.Center()
		fields = append(fields,
			zap.Int32s("boundsLower", []int32{bounds.Lower.X, bounds.Lower.Y, bounds.Lower.Z}),
			zap.Int32s("boundsUpper", []int32{bounds.Upper.X, bounds.Upper.Y, bounds.Upper.Z}),
			zap.Float64s("center", []float64{x, y, z}),
		)
	}

	logger.Get(ctx).Info("Volume", fields...)
}
