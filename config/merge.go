package config

import "slices"

// mergeConfigs merges override configuration into base
func mergeConfigs(base, override *Config) *Config {
	result := *base

	if override.Version != "" {
		result.Version = override.Version
	}
	if override.HooksDir != "" {
		result.HooksDir = override.HooksDir
	}
	if override.Binary != "" {
		result.Binary = override.Binary
	}
	if override.Install != nil {
		install := *override.Install
		result.Install = &install
	}

	// Approval categories accumulate; a label is listed once.
	result.ApprovalCategories = slices.Clone(base.ApprovalCategories)
	for _, label := range override.ApprovalCategories {
		if !slices.Contains(result.ApprovalCategories, label) {
			result.ApprovalCategories = append(result.ApprovalCategories, label)
		}
	}

	// Handlers are replaced per hook key.
	if override.Handlers != nil {
		merged := make(map[string][]HandlerConfig, len(base.Handlers)+len(override.Handlers))
		for k, v := range base.Handlers {
			merged[k] = v
		}
		for k, v := range override.Handlers {
			merged[k] = v
		}
		result.Handlers = merged
	}

	if override.Extensions != nil {
		merged := make(map[string]interface{}, len(base.Extensions)+len(override.Extensions))
		for k, v := range base.Extensions {
			merged[k] = v
		}
		for key, value := range override.Extensions {
			// If both base and override have the same extension key, merge them
			if baseMap, ok := merged[key].(map[string]interface{}); ok {
				if overrideMap, ok := value.(map[string]interface{}); ok {
					mergedMap := make(map[string]interface{}, len(baseMap)+len(overrideMap))
					for k, v := range baseMap {
						mergedMap[k] = v
					}
					for k, v := range overrideMap {
						mergedMap[k] = v
					}
					merged[key] = mergedMap
					continue
				}
			}
			merged[key] = value
		}
		result.Extensions = merged
	}

	return &result
}
