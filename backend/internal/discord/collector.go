// Package discord collects guild interaction data into the graph store.
package discord

import (
	"context"
	"errors"
	"net/http"

	"teamgraph/backend/internal/graph"
	apperrors "teamgraph/backend/pkg/errors"
	"teamgraph/backend/pkg/logger"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// MessageSource is the part of *discordgo.Session the collector reads from
type MessageSource interface {
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
}

// Recorder is the part of *graph.Repository the collector writes to
type Recorder interface {
	UpsertUser(ctx context.Context, teamID, userID, name string) error
	RecordUserMentions(ctx context.Context, user graph.User) error
	RecordThread(ctx context.Context, teamID string, thread graph.Thread) error
}

// Collector reads recent guild messages and stores users, mentions and
// reply threads
type Collector struct {
	source             MessageSource
	recorder           Recorder
	messagesPerChannel int
	logger             *zap.Logger
}

// NewCollector creates a collector. messagesPerChannel is clamped to the
// API page size.
func NewCollector(source MessageSource, recorder Recorder, messagesPerChannel int, log *zap.Logger) *Collector {
	if messagesPerChannel <= 0 || messagesPerChannel > 100 {
		messagesPerChannel = 100
	}
	return &Collector{
		source:             source,
		recorder:           recorder,
		messagesPerChannel: messagesPerChannel,
		logger:             logger.Component("discord_collector", log),
	}
}

// Fetch reads one page of messages from every text channel in the guild
func (c *Collector) Fetch(ctx context.Context, guildID string) ([]*discordgo.Message, error) {
	if c.source == nil {
		return nil, apperrors.ErrDiscordSessionUnavailable
	}

	channels, err := c.source.GuildChannels(guildID)
	if err != nil {
		var restErr *discordgo.RESTError
		if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
			return nil, apperrors.NewDiscordGuildNotFound(guildID, err)
		}
		return nil, apperrors.NewDiscordGuildFetchFailed(guildID, err)
	}

	var textChannels []*discordgo.Channel
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildText {
			textChannels = append(textChannels, ch)
			continue
		}
		c.logger.Debug("Skipping non-text channel",
			zap.String("channel_id", ch.ID),
			zap.String("channel_name", ch.Name),
			zap.Int("channel_type", int(ch.Type)),
		)
	}

	c.logger.Info("Fetching guild messages",
		zap.String("guild_id", guildID),
		zap.Int("channels", len(textChannels)),
		zap.Int("messages_per_channel", c.messagesPerChannel),
	)

	var all []*discordgo.Message
	for _, ch := range textChannels {
		select {
		case <-ctx.Done():
			return all, apperrors.NewContextCancelled("Fetch", ctx.Err())
		default:
		}

		batch, err := c.source.ChannelMessages(ch.ID, c.messagesPerChannel, "", "", "")
		if err != nil {
			// One unreadable channel should not sink the whole guild
			c.logger.Warn("Failed to fetch channel messages",
				zap.String("channel_id", ch.ID),
				zap.Error(apperrors.NewDiscordFetchFailed(ch.ID, err)),
			)
			continue
		}
		all = append(all, batch...)
	}
	return all, nil
}

// Collect fetches the guild and records the resulting snapshot
func (c *Collector) Collect(ctx context.Context, guildID string) (Snapshot, error) {
	messages, err := c.Fetch(ctx, guildID)
	if err != nil {
		return Snapshot{}, err
	}

	snap := BuildSnapshot(guildID, messages)
	if err := c.Record(ctx, guildID, snap); err != nil {
		return snap, err
	}

	c.logger.Info("Guild collected",
		zap.String("guild_id", guildID),
		zap.Int("messages", len(messages)),
		zap.Int("users", len(snap.Users)),
		zap.Int("threads", len(snap.Threads)),
	)
	return snap, nil
}

// Record writes a snapshot. Users go first so mentions and threads can
// match them.
func (c *Collector) Record(ctx context.Context, teamID string, snap Snapshot) error {
	for _, u := range snap.Users {
		if err := c.recorder.UpsertUser(ctx, teamID, u.ID, u.Name); err != nil {
			return err
		}
	}
	for _, u := range snap.Users {
		if err := c.recorder.RecordUserMentions(ctx, u); err != nil {
			return err
		}
	}
	for _, t := range snap.Threads {
		if err := c.recorder.RecordThread(ctx, teamID, t); err != nil {
			return err
		}
	}
	return nil
}
